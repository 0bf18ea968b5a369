package usecase

import (
	"sort"
	"sync"
)

// keyLocker 以帳戶 ID 為單位的互斥鎖
// 沒有人持有的鎖會被移除，避免 map 無限成長
type keyLocker struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyLocker() *keyLocker {
	return &keyLocker{locks: make(map[string]*keyLock)}
}

// Lock 鎖定多個帳戶 ID，回傳解鎖函式
// ID 會先排序並去除重複，確保多帳戶操作的加鎖順序一致以避免死鎖
func (k *keyLocker) Lock(ids ...string) (unlock func()) {
	ordered := lockOrder(ids)
	held := make([]*keyLock, 0, len(ordered))
	for _, id := range ordered {
		l := k.acquire(id)
		l.mu.Lock()
		held = append(held, l)
	}
	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].mu.Unlock()
			k.release(ordered[i])
		}
	}
}

func (k *keyLocker) acquire(id string) *keyLock {
	k.mu.Lock()
	defer k.mu.Unlock()
	l, ok := k.locks[id]
	if !ok {
		l = &keyLock{}
		k.locks[id] = l
	}
	l.refs++
	return l
}

func (k *keyLocker) release(id string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	l := k.locks[id]
	l.refs--
	if l.refs == 0 {
		delete(k.locks, id)
	}
}

// size 目前仍被持有或等待中的鎖數量
func (k *keyLocker) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}

func lockOrder(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
