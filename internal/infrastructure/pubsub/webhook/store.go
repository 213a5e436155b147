package webhookpubsub

import (
	"sort"

	"github.com/dgraph-io/badger/v3"
	"github.com/timshannon/badgerhold/v4"
)

// store persists the subscriptions in a dedicated badger db, kept in memory
// if no datadir is given.
type store struct {
	db *badgerhold.Store
}

// newStore opens the subscriptions db in dir, in memory if dir is empty.
func newStore(dir string, logger badger.Logger) (*store, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = logger
	if len(dir) <= 0 {
		opts.InMemory = true
	}

	db, err := badgerhold.Open(badgerhold.Options{
		Encoder: badgerhold.DefaultEncode,
		Decoder: badgerhold.DefaultDecode,
		Options: opts,
	})
	if err != nil {
		return nil, err
	}
	return &store{db}, nil
}

func (s *store) add(sub *Subscription) error {
	return s.db.Insert(sub.ID, *sub)
}

func (s *store) remove(id string) error {
	if err := s.db.Delete(id, Subscription{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return ErrSubscriptionNotFound
		}
		return err
	}
	return nil
}

// list returns the subscriptions for the given topic, or all of them if
// the topic is empty.
func (s *store) list(topic string) ([]Subscription, error) {
	query := &badgerhold.Query{}
	if len(topic) > 0 {
		query = badgerhold.Where("Topic").Eq(topic)
	}

	var subs []Subscription
	if err := s.db.Find(&subs, query); err != nil {
		return nil, err
	}
	sort.SliceStable(subs, func(i, j int) bool {
		return subs[i].ID < subs[j].ID
	})
	return subs, nil
}

func (s *store) close() error {
	return s.db.Close()
}
