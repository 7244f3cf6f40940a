package index

import (
	"encoding/json"
	"errors"
	"sort"
	"strings"

	"devwrite/internal/domain/content"
	bolt "go.etcd.io/bbolt"
)

var ErrNotFound = errors.New("not found")

type ListOptions struct {
	Page int
	// Size of a page. Zero lists everything.
	Size          int
	IncludeHidden bool
	IncludePages  bool
}

func (s *Store) GetPost(slug string) (content.Post, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return content.Post{}, ErrNotFound
	}
	var p content.Post
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bMeta)
		if b == nil {
			return ErrNotFound
		}
		v := b.Get([]byte(slug))
		if v == nil {
			return ErrNotFound
		}
		return json.Unmarshal(v, &p)
	})
	return p, err
}

func (s *Store) GetMeta(slug string) (content.PostSummary, error) {
	p, err := s.GetPost(slug)
	return p.Meta, err
}

// ContentHash summarizes the sources of the last rebuild.
func (s *Store) ContentHash() string {
	var h string
	_ = s.db.View(func(tx *bolt.Tx) error {
		if b := tx.Bucket(bState); b != nil {
			h = string(b.Get(kContentHash))
		}
		return nil
	})
	return h
}

func normalizePaging(page, size int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if size < 0 {
		size = 0
	}
	if size > 100 {
		size = 100
	}
	return page, size
}

// List returns posts newest first.
func (s *Store) List(opt ListOptions) ([]content.PostSummary, error) {
	return s.list(opt, func(tx *bolt.Tx) *bolt.Bucket { return tx.Bucket(bIdxDate) })
}

// ListByTag returns posts carrying exactly tag, newest first.
func (s *Store) ListByTag(tag string, opt ListOptions) ([]content.PostSummary, error) {
	return s.listTerm(bIdxTag, tag, opt)
}

func (s *Store) ListByCategory(cat string, opt ListOptions) ([]content.PostSummary, error) {
	return s.listTerm(bIdxCat, cat, opt)
}

func (s *Store) listTerm(parent []byte, term string, opt ListOptions) ([]content.PostSummary, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, nil
	}
	return s.list(opt, func(tx *bolt.Tx) *bolt.Bucket {
		b := tx.Bucket(parent)
		if b == nil {
			return nil
		}
		return b.Bucket([]byte(term))
	})
}

func (s *Store) list(opt ListOptions, idxOf func(*bolt.Tx) *bolt.Bucket) ([]content.PostSummary, error) {
	opt.Page, opt.Size = normalizePaging(opt.Page, opt.Size)

	var out []content.PostSummary
	err := s.db.View(func(tx *bolt.Tx) error {
		idx := idxOf(tx)
		metaB := tx.Bucket(bMeta)
		if idx == nil || metaB == nil {
			return nil
		}

		skip := (opt.Page - 1) * opt.Size
		cur := idx.Cursor()
		for k, _ := cur.First(); k != nil; k, _ = cur.Next() {
			slug := slugFromTimeSlugKey(k)
			if slug == "" {
				continue
			}
			v := metaB.Get([]byte(slug))
			if v == nil {
				continue
			}
			var p content.Post
			if err := json.Unmarshal(v, &p); err != nil {
				continue
			}
			m := p.Meta
			if m.Status == content.StatusHidden && !opt.IncludeHidden {
				continue
			}
			if m.IsPage() && !opt.IncludePages {
				continue
			}
			if skip > 0 {
				skip--
				continue
			}
			out = append(out, m)
			if opt.Size > 0 && len(out) >= opt.Size {
				break
			}
		}
		return nil
	})
	return out, err
}

// TermCount is a tag or category with the number of listed posts using it.
type TermCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func (s *Store) TagCounts() ([]TermCount, error) {
	return s.termCounts(bIdxTag)
}

func (s *Store) CategoryCounts() ([]TermCount, error) {
	return s.termCounts(bIdxCat)
}

// termCounts counts public posts per term, most used first.
func (s *Store) termCounts(parent []byte) ([]TermCount, error) {
	var out []TermCount
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(parent)
		metaB := tx.Bucket(bMeta)
		if b == nil || metaB == nil {
			return nil
		}
		return b.ForEachBucket(func(name []byte) error {
			n := 0
			err := b.Bucket(name).ForEach(func(k, _ []byte) error {
				var p content.Post
				if err := json.Unmarshal(metaB.Get([]byte(slugFromTimeSlugKey(k))), &p); err != nil {
					return nil
				}
				if p.Meta.IsPublic() && !p.Meta.IsPage() {
					n++
				}
				return nil
			})
			if err != nil {
				return err
			}
			if n > 0 {
				out = append(out, TermCount{Name: string(name), Count: n})
			}
			return nil
		})
	})
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out, err
}
