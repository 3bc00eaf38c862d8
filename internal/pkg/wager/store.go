package wager

import (
	"github.com/vreid/fairway/internal/pkg/common"
	bolt "go.etcd.io/bbolt"
)

func Load(tx *bolt.Tx, id string) (Wager, error) {
	var w Wager

	err := common.GetJSON(tx, common.WagersBucket, []byte(id), &w)

	return w, err
}

func Save(tx *bolt.Tx, w Wager) error {
	return common.PutJSON(tx, common.WagersBucket, []byte(w.ID), w)
}

// Select returns every stored wager for which keep reports true.
func Select(tx *bolt.Tx, keep func(Wager) bool) ([]Wager, error) {
	result := []Wager{}

	err := common.ScanJSON(tx, common.WagersBucket, nil, func(w Wager) error {
		if keep(w) {
			result = append(result, w)
		}

		return nil
	})

	return result, err
}
