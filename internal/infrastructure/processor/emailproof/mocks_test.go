package emailproof_test

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"
	"github.com/zkramp/ramp-daemon/internal/core/domain"
	"github.com/zkramp/ramp-daemon/internal/core/ports"
)

// **** Verifier ****

type mockVerifier struct {
	mock.Mock
}

func newMockVerifier(numSignals int, valid bool, err error) *mockVerifier {
	v := &mockVerifier{}
	v.On("NumPublicSignals").Return(numSignals)
	v.On("Verify", mock.Anything).Return(valid, err)
	return v
}

func (m *mockVerifier) NumPublicSignals() int {
	args := m.Called()
	return args.Int(0)
}

func (m *mockVerifier) Verify(proof ports.ZkProof) (bool, error) {
	args := m.Called(proof)
	return args.Bool(0), args.Error(1)
}

// **** Nullifier registry ****

type nullifierSet struct {
	lock *sync.Mutex
	used map[string]string
}

func newNullifierSet() *nullifierSet {
	return &nullifierSet{&sync.Mutex{}, make(map[string]string)}
}

func (s *nullifierSet) Consume(
	_ context.Context, writer, nullifier string,
) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.used[nullifier]; ok {
		return domain.ErrNullifierAlreadyUsed
	}
	s.used[nullifier] = writer
	return nil
}

func (s *nullifierSet) IsNullified(
	_ context.Context, nullifier string,
) (bool, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	_, ok := s.used[nullifier]
	return ok, nil
}
