package datatable

import (
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validForm() url.Values {
	return url.Values{
		"draw":             {"3"},
		"start":            {"20"},
		"length":           {"10"},
		"search[value]":    {" state:failure add "},
		"order[0][column]": {"9"},
		"order[0][dir]":    {"desc"},
		"taskname":         {"tasks.add"},
		"workername":       {"celery@w1"},
	}
}

func TestParseParams(t *testing.T) {
	p, err := ParseParams(validForm())
	require.NoError(t, err)

	assert.Equal(t, 3, p.Draw)
	assert.Equal(t, 20, p.Query.Offset)
	assert.Equal(t, 10, p.Query.Limit)
	assert.Equal(t, "runtime", p.Query.SortField)
	assert.True(t, p.Query.SortDescending)
	assert.Equal(t, "state:failure add", p.Query.Search)
	assert.Equal(t, "tasks.add", p.Query.NameFilter)
	assert.Equal(t, "celery@w1", p.Query.WorkerFilter)
}

func TestParseParams_ColumnMap(t *testing.T) {
	want := map[string]string{
		"0": "name", "1": "id", "2": "state", "6": "received", "7": "started",
		"8": "duration", "9": "runtime", "10": "worker", "13": "retries", "14": "revoked",
	}
	for column, field := range want {
		form := validForm()
		form.Set("order[0][column]", column)
		p, err := ParseParams(form)
		require.NoError(t, err, column)
		assert.Equal(t, field, p.Query.SortField, column)
	}
}

func TestParseParams_AllRows(t *testing.T) {
	form := validForm()
	form.Set("length", "-1")
	form.Set("order[0][dir]", "asc")

	p, err := ParseParams(form)
	require.NoError(t, err)
	assert.Equal(t, -1, p.Query.Limit)
	assert.False(t, p.Query.SortDescending)
}

func TestParseParams_BadRequest(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"missing draw", "draw", ""},
		{"non numeric draw", "draw", "abc"},
		{"non numeric start", "start", "1.5"},
		{"negative start", "start", "-1"},
		{"missing length", "length", ""},
		{"non numeric length", "length", "ten"},
		{"unmapped column", "order[0][column]", "3"},
		{"non numeric column", "order[0][column]", "name"},
		{"bad direction", "order[0][dir]", "up"},
		{"missing direction", "order[0][dir]", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validForm()
			if tt.value == "" {
				form.Del(tt.key)
			} else {
				form.Set(tt.key, tt.value)
			}
			_, err := ParseParams(form)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrBadRequest), "got %v", err)
		})
	}
}
