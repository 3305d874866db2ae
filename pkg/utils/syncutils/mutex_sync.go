//go:build !deadlock
// +build !deadlock

package syncutils

import "sync"

type Mutex = sync.Mutex
