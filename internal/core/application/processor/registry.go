// Package processor keeps track of the proof processors enabled in the
// daemon, by verifier id.
package processor

import (
	"fmt"
	"sort"
	"sync"

	"github.com/zkramp/ramp-daemon/internal/core/domain"
	"github.com/zkramp/ramp-daemon/internal/core/ports"
)

type Registry struct {
	lock         *sync.RWMutex
	payment      map[string]ports.PaymentProcessor
	registration map[string]ports.RegistrationProcessor
	admins       map[string][]ports.ProcessorAdmin
}

func NewRegistry() *Registry {
	return &Registry{
		lock:         &sync.RWMutex{},
		payment:      make(map[string]ports.PaymentProcessor),
		registration: make(map[string]ports.RegistrationProcessor),
		admins:       make(map[string][]ports.ProcessorAdmin),
	}
}

// AddPaymentProcessor registers a payment processor. If it also exposes
// admin settings they are registered under the same id.
func (r *Registry) AddPaymentProcessor(p ports.PaymentProcessor) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.payment[p.ID()]; ok {
		return fmt.Errorf("payment processor %s already registered", p.ID())
	}
	r.payment[p.ID()] = p
	r.addAdmin(p.ID(), p)
	return nil
}

// AddRegistrationProcessor ...
func (r *Registry) AddRegistrationProcessor(p ports.RegistrationProcessor) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.registration[p.ID()]; ok {
		return fmt.Errorf("registration processor %s already registered", p.ID())
	}
	r.registration[p.ID()] = p
	r.addAdmin(p.ID(), p)
	return nil
}

func (r *Registry) addAdmin(id string, p interface{}) {
	if admin, ok := p.(ports.ProcessorAdmin); ok {
		r.admins[id] = append(r.admins[id], admin)
	}
}

func (r *Registry) PaymentProcessor(id string) (ports.PaymentProcessor, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	p, ok := r.payment[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownVerifier, id)
	}
	return p, nil
}

func (r *Registry) RegistrationProcessor(
	id string,
) (ports.RegistrationProcessor, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	p, ok := r.registration[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownVerifier, id)
	}
	return p, nil
}

// Admins returns the settings of all the processors registered with the
// given id.
func (r *Registry) Admins(id string) ([]ports.ProcessorAdmin, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	admins, ok := r.admins[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownVerifier, id)
	}
	return admins, nil
}

// KeyHashAdapters returns the distinct key hash adapters of the processors
// registered with the given id.
func (r *Registry) KeyHashAdapters(id string) ([]ports.KeyHashAdapter, error) {
	admins, err := r.Admins(id)
	if err != nil {
		return nil, err
	}

	adapters := make([]ports.KeyHashAdapter, 0, len(admins))
	for _, a := range admins {
		adapter := a.KeyHashAdapter()
		found := false
		for _, aa := range adapters {
			if aa == adapter {
				found = true
				break
			}
		}
		if !found {
			adapters = append(adapters, adapter)
		}
	}
	return adapters, nil
}

// IDs returns the sorted ids of every registered processor.
func (r *Registry) IDs() []string {
	r.lock.RLock()
	defer r.lock.RUnlock()

	ids := make([]string, 0, len(r.admins))
	seen := make(map[string]struct{})
	for id := range r.payment {
		seen[id] = struct{}{}
	}
	for id := range r.registration {
		seen[id] = struct{}{}
	}
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
