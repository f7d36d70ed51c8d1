package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/gridclip/internal/access"
	"github.com/zjrosen/gridclip/internal/copypaste"
	"github.com/zjrosen/gridclip/internal/grid"
)

type memoryStore struct {
	saves int
	err   error
}

func (m *memoryStore) SaveSheet(context.Context, *grid.Sheet) error {
	if m.err != nil {
		return m.err
	}
	m.saves++
	return nil
}

func testSheet() *grid.Sheet {
	return grid.NewSheet("fruit", []grid.Column{
		{ID: "name", Field: "name", Name: "Name"},
		{ID: "qty", Field: "qty", Name: "Qty", Type: grid.ColumnNumber},
	}, []grid.Record{
		{grid.IDField: "0", "name": "apple", "qty": 1.0},
		{grid.IDField: "1", "name": "pear", "qty": 2.0},
	})
}

func newTestServer(t *testing.T, store Store) (*Server, *grid.Sheet) {
	t.Helper()
	s := testSheet()
	srv := NewServer(s, copypaste.Config{}, Options{Store: store})
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv, s
}

func do(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func value(s *grid.Sheet, row, col int) string {
	v, _ := s.Value(row, col)
	return access.Text(v)
}

func TestGetSheet(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := do(t, srv, http.MethodGet, "/api/sheet", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	resp := decode[sheetResponse](t, rec)
	require.Equal(t, "fruit", resp.Name)
	require.Len(t, resp.Columns, 2)
	require.Equal(t, "number", resp.Columns[1].Type)
	require.Equal(t, [][]string{{"apple", "1"}, {"pear", "2"}}, resp.Rows)
}

func TestCopy(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := do(t, srv, http.MethodPost, "/api/copy", copyRequest{Ranges: []string{"A1:B2"}})
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[copyResponse](t, rec)
	require.Equal(t, "apple\t1\r\npear\t2\r\n", resp.Text)
	require.Equal(t, []string{"A1:B2"}, resp.Ranges)

	rec = do(t, srv, http.MethodGet, "/api/copied", nil)
	require.Equal(t, []string{"A1:B2"}, decode[rangesResponse](t, rec).Ranges)

	rec = do(t, srv, http.MethodDelete, "/api/copied", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, srv, http.MethodDelete, "/api/copied", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCopy_HeaderOverrideIsPerRequest(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	on := true

	rec := do(t, srv, http.MethodPost, "/api/copy", copyRequest{Ranges: []string{"r0c0"}, IncludeHeader: &on})
	require.Equal(t, "Name\r\napple\r\n", decode[copyResponse](t, rec).Text)
	require.False(t, srv.Manager().Config().IncludeHeaderWhenCopying)
}

func TestCopy_BadInput(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := do(t, srv, http.MethodPost, "/api/copy", copyRequest{})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "bad_request", decode[ErrorResponse](t, rec).Code)

	rec = do(t, srv, http.MethodPost, "/api/copy", copyRequest{Ranges: []string{"nope"}})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodPost, "/api/copy", copyRequest{Ranges: []string{"Z50"}})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "out_of_grid", decode[ErrorResponse](t, rec).Code)

	rec = do(t, srv, http.MethodPost, "/api/copy", map[string]any{"unknown": 1})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPasteAndUndo(t *testing.T) {
	store := &memoryStore{}
	srv, s := newTestServer(t, store)

	rec := do(t, srv, http.MethodPost, "/api/paste", pasteRequest{Text: "fig\t7\r\nkiwi\t8\r\n", Active: "A2"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[pasteResponse](t, rec)
	require.Equal(t, "A2:B3", resp.Destination)
	require.Equal(t, 1, resp.RowsAdded)
	require.Equal(t, 0, resp.ColumnsAdded)
	require.Equal(t, "kiwi", value(s, 2, 0))
	require.Equal(t, 1, store.saves)

	rec = do(t, srv, http.MethodPost, "/api/undo", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	undo := decode[undoResponse](t, rec)
	require.True(t, undo.Undone)
	require.Equal(t, "A2:B3", undo.Destination)
	require.Equal(t, 2, s.RowCount())
	require.Equal(t, "pear", value(s, 1, 0))
	require.Equal(t, 2, store.saves)

	rec = do(t, srv, http.MethodPost, "/api/undo", nil)
	require.False(t, decode[undoResponse](t, rec).Undone)
}

func TestPaste_Broadcast(t *testing.T) {
	srv, s := newTestServer(t, nil)

	rec := do(t, srv, http.MethodPost, "/api/paste", pasteRequest{Text: "9", Selection: []string{"B1:B2"}})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "B1:B2", decode[pasteResponse](t, rec).Destination)
	require.Equal(t, "9", value(s, 0, 1))
	require.Equal(t, "9", value(s, 1, 1))
}

func TestPaste_ErrorStatuses(t *testing.T) {
	tests := []struct {
		name   string
		req    pasteRequest
		lock   bool
		status int
		code   string
	}{
		{name: "empty text", req: pasteRequest{Text: "", Active: "A1"}, status: http.StatusUnprocessableEntity, code: "parse_ambiguity"},
		{name: "no anchor", req: pasteRequest{Text: "x"}, status: http.StatusBadRequest, code: "no_anchor"},
		{name: "schema locked", req: pasteRequest{Text: "a\tb\tc", Active: "A1"}, lock: true, status: http.StatusConflict, code: "schema_locked"},
		{name: "bad number", req: pasteRequest{Text: "x", Active: "B1"}, status: http.StatusUnprocessableEntity, code: "cell_write"},
		{name: "bad active", req: pasteRequest{Text: "x", Active: "??"}, status: http.StatusBadRequest, code: "bad_request"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, s := newTestServer(t, nil)
			if tt.lock {
				s.Lock()
			}
			rec := do(t, srv, http.MethodPost, "/api/paste", tt.req)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			require.Equal(t, tt.code, decode[ErrorResponse](t, rec).Code)
		})
	}
}

func TestPaste_FarAnchorIsRejectedWithoutGrowth(t *testing.T) {
	store := &memoryStore{}
	srv, s := newTestServer(t, store)

	rec := do(t, srv, http.MethodPost, "/api/paste", pasteRequest{Text: "x", Active: "A300000"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	require.Equal(t, "too_large", decode[ErrorResponse](t, rec).Code)
	require.Equal(t, 2, s.RowCount())
	require.Zero(t, store.saves)

	rec = do(t, srv, http.MethodPost, "/api/paste", pasteRequest{Text: "x", Active: "ZZZZZZZZZZZZZZZ1"})
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	require.Len(t, s.Columns(), 2)
}

func TestPaste_ConfiguredGrowthLimits(t *testing.T) {
	s := testSheet()
	srv := NewServer(s, copypaste.Config{}, Options{MaxRows: 3, MaxCols: 2})
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	rec := do(t, srv, http.MethodPost, "/api/paste", pasteRequest{Text: "fig\r\nkiwi", Active: "A2"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, 3, s.RowCount())

	for _, active := range []string{"A4", "C1"} {
		rec = do(t, srv, http.MethodPost, "/api/paste", pasteRequest{Text: "x", Active: active})
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code, active)
		require.Equal(t, "too_large", decode[ErrorResponse](t, rec).Code)
	}
	require.Equal(t, 3, s.RowCount())
	require.Len(t, s.Columns(), 2)
}

func TestPaste_SaveFailure(t *testing.T) {
	srv, _ := newTestServer(t, &memoryStore{err: errors.New("disk full")})

	rec := do(t, srv, http.MethodPost, "/api/paste", pasteRequest{Text: "fig", Active: "A1"})
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, decode[ErrorResponse](t, rec).Error, "disk full")
}

func TestRequestID_PreservesIncomingHeader(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/sheet", nil)
	req.Header.Set("X-Request-Id", "abc-123")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	require.Equal(t, "abc-123", rec.Header().Get("X-Request-Id"))
}
