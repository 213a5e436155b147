package emailproof

import (
	"sort"
	"sync"

	"github.com/zkramp/ramp-daemon/internal/core/domain"
	"github.com/zkramp/ramp-daemon/internal/core/ports"
)

type keyHashAdapter struct {
	lock      *sync.RWMutex
	keyHashes map[string]struct{}
}

// NewKeyHashAdapter returns a set of trusted mail-server key hashes,
// initialized with the given ones.
func NewKeyHashAdapter(keyHashes ...string) (ports.KeyHashAdapter, error) {
	a := &keyHashAdapter{
		lock:      &sync.RWMutex{},
		keyHashes: make(map[string]struct{}),
	}
	for _, h := range keyHashes {
		if err := a.AddKeyHash(h); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func (a *keyHashAdapter) IsKeyHash(keyHash string) bool {
	a.lock.RLock()
	defer a.lock.RUnlock()

	_, ok := a.keyHashes[domain.NormalizeHash(keyHash)]
	return ok
}

func (a *keyHashAdapter) AddKeyHash(keyHash string) error {
	keyHash = domain.NormalizeHash(keyHash)
	if !domain.IsValidHash(keyHash) {
		return domain.ErrInvalidKeyHash
	}

	a.lock.Lock()
	defer a.lock.Unlock()

	if _, ok := a.keyHashes[keyHash]; ok {
		return domain.ErrKeyHashAlreadyAdded
	}
	a.keyHashes[keyHash] = struct{}{}
	return nil
}

func (a *keyHashAdapter) RemoveKeyHash(keyHash string) error {
	keyHash = domain.NormalizeHash(keyHash)

	a.lock.Lock()
	defer a.lock.Unlock()

	if _, ok := a.keyHashes[keyHash]; !ok {
		return domain.ErrKeyHashNotFound
	}
	delete(a.keyHashes, keyHash)
	return nil
}

func (a *keyHashAdapter) KeyHashes() []string {
	a.lock.RLock()
	defer a.lock.RUnlock()

	list := make([]string, 0, len(a.keyHashes))
	for h := range a.keyHashes {
		list = append(list, h)
	}
	sort.Strings(list)
	return list
}
