package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/itops/staffdesk/pkg/api"
	"github.com/itops/staffdesk/pkg/dates"
	apperrors "github.com/itops/staffdesk/pkg/errors"
	"github.com/itops/staffdesk/pkg/viewfilter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rosterMap map[string]api.Employee

func (r rosterMap) Lookup(id string) (api.Employee, bool) {
	e, ok := r[id]
	return e, ok
}

func TestCheckPhotos(t *testing.T) {
	roster := rosterMap{"E001": {EmployeeID: "E001"}, "E002": {EmployeeID: "E002"}}

	c := CheckPhotos([]string{
		"/tmp/E001.jpg",
		"/tmp/E002.PNG",
		"/tmp/E003.jpeg",
		"/tmp/E001.gif",
		"/tmp/readme",
	}, roster)

	assert.Equal(t, []string{"/tmp/E001.jpg", "/tmp/E002.PNG"}, c.Matched)
	assert.Equal(t, []string{"/tmp/E003.jpeg"}, c.Unmatched)
	assert.Equal(t, []string{"/tmp/E001.gif", "/tmp/readme"}, c.Unsupported)
}

func TestQueryPredicates(t *testing.T) {
	p, err := Query{Status: "Active", Search: "ops", JoinFrom: "2020-01-01"}.Predicates()
	require.NoError(t, err)
	assert.Equal(t, viewfilter.StatusActive, p.Status)
	assert.Equal(t, "ops", p.Query)
	assert.True(t, p.Joined.Active())
	assert.False(t, p.Left.Active())
	assert.Equal(t, dates.Range{}, p.Left)

	_, err = Query{LeftTo: "not-a-date"}.Predicates()
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestPluralize(t *testing.T) {
	tests := []struct {
		count    int
		expected string
	}{
		{0, "s"},
		{1, ""},
		{2, "s"},
		{100, "s"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, pluralize(tt.count), "pluralize(%d)", tt.count)
	}
}

func TestCommitDropsResultAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	view, unbind := bindView(ctx)
	defer unbind()

	path := filepath.Join(t.TempDir(), "out", "live.bin")
	var done int
	require.NoError(t, commit(ctx, view, path, []byte("ok"), func() { done++ }))
	assert.Equal(t, 1, done)
	assert.FileExists(t, path)

	cancel()
	late := filepath.Join(t.TempDir(), "late.bin")
	err := commit(ctx, view, late, []byte("late"), func() { done++ })
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, done)
	_, statErr := os.Stat(late)
	assert.True(t, os.IsNotExist(statErr))
	assert.False(t, view.Mounted())
}

func TestBindViewOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	view, unbind := bindView(ctx)
	defer unbind()
	assert.False(t, view.Mounted())
}
