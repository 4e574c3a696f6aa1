package repository

import (
	"errors"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"orders/internal/domain"
)

func TestMapError(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		wantKind error
		wantMsg  string
	}{
		{name: "unique", err: &pq.Error{Code: "23505"}, wantKind: domain.ErrConflict, wantMsg: "duplicate entry"},
		{name: "foreign key", err: &pq.Error{Code: "23503"}, wantKind: domain.ErrBadRequest, wantMsg: "referenced resource does not exist"},
		{name: "not null", err: &pq.Error{Code: "23502", Column: "menu_id"}, wantKind: domain.ErrBadRequest, wantMsg: "field menu_id is required"},
		{name: "check", err: &pq.Error{Code: "23514"}, wantKind: domain.ErrBadRequest, wantMsg: "value violates a check constraint"},
		{name: "other pq error", err: &pq.Error{Code: "57014", Message: "canceled"}, wantKind: domain.ErrInternal},
		{name: "plain", err: errors.New("boom"), wantKind: domain.ErrInternal, wantMsg: "boom"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mapped := mapError(tc.err)
			assert.Equal(t, tc.wantKind, domain.KindOf(mapped))
			if tc.wantMsg != "" {
				assert.Equal(t, tc.wantMsg, domain.Message(mapped))
			}
		})
	}
}
