package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/florinato/mongoagent/internal/store"
)

// Archive writes session transcripts as markdown files, one per session,
// so conversations survive a service restart for later review.
type Archive struct {
	dir string
}

// Summary describes an archived transcript.
type Summary struct {
	ID      string    `json:"id"`
	Created time.Time `json:"created"`
	Updated time.Time `json:"updated"`
	Turns   int       `json:"turns"`
	Pending string    `json:"pending,omitempty"`
}

func NewArchive(dir string) *Archive {
	return &Archive{dir: dir}
}

func (a *Archive) Dir() string { return a.dir }

func (a *Archive) path(id string) string {
	return filepath.Join(a.dir, id+".md")
}

// Save writes the current state of s, replacing any earlier transcript.
func (a *Archive) Save(s *Session) error {
	turns := s.Turns()
	meta := map[string]any{
		"id":      s.ID(),
		"created": store.FormatTime(s.CreatedAt()),
		"updated": store.FormatTime(s.UpdatedAt()),
		"turns":   len(turns),
	}
	if p := s.Pending(); p != nil {
		meta["pending"] = p.Command
	}

	path := a.path(s.ID())
	return store.WithLock(path, store.DefaultLockTimeout, func() error {
		return store.WriteDocument(path, &store.Document{Meta: meta, Body: RenderTranscript(turns)})
	})
}

// Load returns the summary and rendered body of an archived transcript.
func (a *Archive) Load(id string) (*Summary, string, error) {
	if !validID(id) {
		return nil, "", fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	path := a.path(id)
	if !store.Exists(path) {
		return nil, "", fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	var doc *store.Document
	err := store.WithReadLock(path, store.DefaultLockTimeout, func() error {
		var err error
		doc, err = store.ReadDocument(path)
		return err
	})
	if err != nil {
		return nil, "", err
	}
	return summarize(doc), doc.Body, nil
}

// List returns summaries of every archived transcript, sorted by id, which
// for time-ordered ids is creation order.
func (a *Archive) List() ([]Summary, error) {
	paths, err := store.ListDocuments(a.dir)
	if err != nil {
		return nil, err
	}

	out := make([]Summary, 0, len(paths))
	for _, p := range paths {
		doc, err := store.ReadDocument(p)
		if err != nil {
			return nil, err
		}
		sum := summarize(doc)
		if sum.ID == "" {
			sum.ID = strings.TrimSuffix(filepath.Base(p), ".md")
		}
		out = append(out, *sum)
	}
	return out, nil
}

// Remove deletes the transcript for id if there is one.
func (a *Archive) Remove(id string) error {
	if !validID(id) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	path := a.path(id)
	return store.WithLock(path, store.DefaultLockTimeout, func() error {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing transcript %s: %w", id, err)
		}
		return nil
	})
}

// validID rejects ids that would resolve outside the archive directory.
func validID(id string) bool {
	return id != "" && id != "." && id != ".." && !strings.ContainsAny(id, `/\`)
}

func summarize(doc *store.Document) *Summary {
	return &Summary{
		ID:      store.String(doc.Meta, "id"),
		Created: store.Time(doc.Meta, "created"),
		Updated: store.Time(doc.Meta, "updated"),
		Turns:   store.Int(doc.Meta, "turns"),
		Pending: store.String(doc.Meta, "pending"),
	}
}

// RenderTranscript formats turns as markdown sections.
func RenderTranscript(turns []Turn) string {
	var b strings.Builder
	for i, t := range turns {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "### %s (%s)\n\n", t.Role, t.Time.Format(time.TimeOnly))
		if t.Role == RoleAgentCommand {
			b.WriteString("```javascript\n")
			b.WriteString(t.Content)
			b.WriteString("\n```\n")
			continue
		}
		b.WriteString(t.Content)
		b.WriteString("\n")
	}
	return b.String()
}
