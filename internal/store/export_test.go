package store

import "context"

// SetObject overwrites an object without any checks, simulating corruption.
func (m *MemoryBackend) SetObject(id string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.objects[id] = data
}

// Log walks the parent chain from ref, returning up to n commits (newest first).
func (s *DocumentStore) Log(ctx context.Context, ref string, n int) ([]Commit, error) {
	current, err := s.backend.GetRef(ctx, ref)
	if err != nil {
		return nil, err
	}

	var commits []Commit

	for i := 0; i < n && current != ""; i++ {
		commit, err := s.ReadCommit(ctx, current)
		if err != nil {
			return commits, err
		}

		commits = append(commits, *commit)
		current = commit.Parent
	}

	return commits, nil
}
