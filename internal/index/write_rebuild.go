package index

import (
	"encoding/json"
	"errors"
	"strings"

	"devwrite/internal/domain/build"
	"devwrite/internal/domain/content"
	bolt "go.etcd.io/bbolt"
)

type RebuildOptions struct {
	IncludeDraft bool
}

// Rebuild replaces the whole index with posts in one transaction.
func (s *Store) Rebuild(posts []content.Post, opt RebuildOptions) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, name := range allBuckets {
			if err := tx.DeleteBucket(name); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
				return err
			}
		}

		metaB, err := tx.CreateBucket(bMeta)
		if err != nil {
			return err
		}
		dateB, err := tx.CreateBucket(bIdxDate)
		if err != nil {
			return err
		}
		tagB, err := tx.CreateBucket(bIdxTag)
		if err != nil {
			return err
		}
		catB, err := tx.CreateBucket(bIdxCat)
		if err != nil {
			return err
		}
		stateB, err := tx.CreateBucket(bState)
		if err != nil {
			return err
		}

		var hashes strings.Builder
		for _, p := range posts {
			m := p.Meta
			if m.Status == content.StatusDraft && !opt.IncludeDraft {
				continue
			}
			if strings.TrimSpace(m.Slug) == "" {
				continue
			}
			pb, err := json.Marshal(p)
			if err != nil {
				return err
			}
			if err := metaB.Put([]byte(m.Slug), pb); err != nil {
				return err
			}
			hashes.WriteString(p.Body.ContentHash)

			key := makeTimeSlugKey(sortNano(m.Date.Time()), m.Slug)
			if err := dateB.Put(key, []byte{1}); err != nil {
				return err
			}
			if err := putTerms(tagB, m.Tags, key); err != nil {
				return err
			}
			if err := putTerms(catB, m.Category, key); err != nil {
				return err
			}
		}
		return stateB.Put(kContentHash, []byte(build.HashString(hashes.String())))
	})
}

func putTerms(parent *bolt.Bucket, terms []string, key []byte) error {
	for _, term := range terms {
		if term == "" {
			continue
		}
		sb, err := parent.CreateBucketIfNotExists([]byte(term))
		if err != nil {
			return err
		}
		if err := sb.Put(key, []byte{1}); err != nil {
			return err
		}
	}
	return nil
}
