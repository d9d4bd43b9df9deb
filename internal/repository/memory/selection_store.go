package memory

import (
	"context"
	"time"

	"go-enrollment-server/internal/model"
)

type SelectionStore struct {
	s *Store
}

func (st *SelectionStore) ListByEmail(ctx context.Context, email string) ([]model.Selection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	st.s.mu.RLock()
	selections := make([]model.Selection, 0)
	for _, selection := range st.s.selections {
		if sameEmail(selection.Email, email) {
			selections = append(selections, selection)
		}
	}
	st.s.mu.RUnlock()

	sortByCreatedAt(selections, func(sel model.Selection) time.Time { return sel.CreatedAt })
	return selections, nil
}

func (st *SelectionStore) Create(ctx context.Context, selection model.Selection) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	st.s.mu.Lock()
	st.s.selections[selection.ID] = selection
	st.s.mu.Unlock()
	return nil
}

func (st *SelectionStore) Delete(ctx context.Context, id string, email string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	st.s.mu.Lock()
	defer st.s.mu.Unlock()

	selection, ok := st.s.selections[id]
	if !ok || !sameEmail(selection.Email, email) {
		return 0, nil
	}

	delete(st.s.selections, id)
	return 1, nil
}
