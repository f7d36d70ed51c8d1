package web

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/zjrosen/gridclip/internal/access"
	"github.com/zjrosen/gridclip/internal/copypaste"
	"github.com/zjrosen/gridclip/internal/grid"
	"github.com/zjrosen/gridclip/internal/log"
	"github.com/zjrosen/gridclip/internal/paste"
	"github.com/zjrosen/gridclip/internal/pubsub"
)

// maxBodySize caps request bodies, clipboard text included.
const maxBodySize = 8 << 20

type columnJSON struct {
	ID    string `json:"id"`
	Field string `json:"field"`
	Name  string `json:"name"`
	Type  string `json:"type"`
}

type sheetResponse struct {
	Name    string       `json:"name"`
	Locked  bool         `json:"locked"`
	Columns []columnJSON `json:"columns"`
	Rows    [][]string   `json:"rows"`
}

type copyRequest struct {
	Ranges        []string `json:"ranges"`
	IncludeHeader *bool    `json:"include_header,omitempty"`
}

type copyResponse struct {
	Text   string   `json:"text"`
	Ranges []string `json:"ranges"`
}

type pasteRequest struct {
	Text      string   `json:"text"`
	Active    string   `json:"active,omitempty"`
	Selection []string `json:"selection,omitempty"`
}

type pasteResponse struct {
	Destination  string `json:"destination"`
	RowsAdded    int    `json:"rows_added"`
	ColumnsAdded int    `json:"columns_added"`
}

type undoResponse struct {
	Undone      bool   `json:"undone"`
	Destination string `json:"destination,omitempty"`
}

type rangesResponse struct {
	Ranges []string `json:"ranges"`
}

func (s *Server) handleSheet(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	columns := s.sheet.Columns()
	resp := sheetResponse{
		Name:    s.sheet.Name(),
		Locked:  s.sheet.ColumnStore().Locked(),
		Columns: make([]columnJSON, 0, len(columns)),
		Rows:    make([][]string, 0, s.sheet.RowCount()),
	}
	for _, col := range columns {
		resp.Columns = append(resp.Columns, columnJSON{ID: col.ID, Field: col.Field, Name: col.Name, Type: col.Type.String()})
	}
	for row := range s.sheet.RowCount() {
		rec, _ := s.sheet.Record(row)
		cells := make([]string, len(columns))
		for i, col := range columns {
			cells[i] = access.Text(access.PlainField{}.Get(rec, col))
		}
		resp.Rows = append(resp.Rows, cells)
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCopy(w http.ResponseWriter, r *http.Request) {
	var req copyRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	ranges, err := parseRanges(req.Ranges)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if len(ranges) == 0 {
		s.respondError(w, r, badRequest("ranges must not be empty"))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if req.IncludeHeader != nil {
		prev := s.mgr.Config().IncludeHeaderWhenCopying
		s.mgr.SetIncludeHeader(*req.IncludeHeader)
		defer s.mgr.SetIncludeHeader(prev)
	}
	s.sheet.SetSelectedRanges(ranges)
	if err := s.mgr.Copy(r.Context()); err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, copyResponse{Text: s.clip.Text(), Ranges: a1All(ranges)})
}

func (s *Server) handlePaste(w http.ResponseWriter, r *http.Request) {
	var req pasteRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	selection, err := parseRanges(req.Selection)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	var active *grid.Cell
	if req.Active != "" {
		rg, err := parseRange(req.Active)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		c := rg.TopLeft()
		active = &c
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if active != nil {
		s.sheet.SetActiveCell(*active)
	} else {
		s.sheet.ClearActiveCell()
	}
	s.sheet.SetSelectedRanges(selection)

	rowsBefore, colsBefore := s.sheet.RowCount(), len(s.sheet.Columns())
	s.last = pubsub.Event[copypaste.Notification]{}
	err = s.mgr.PasteText(r.Context(), req.Text)
	if err != nil && paste.IsStructural(err) {
		s.respondError(w, r, err)
		return
	}
	// A failed cell write leaves earlier cells written, so the sheet is
	// saved either way.
	if saveErr := s.save(r); saveErr != nil {
		s.respondError(w, r, saveErr)
		return
	}
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	resp := pasteResponse{
		RowsAdded:    s.sheet.RowCount() - rowsBefore,
		ColumnsAdded: len(s.sheet.Columns()) - colsBefore,
	}
	if s.last.Type == pubsub.PasteAppliedEvent && len(s.last.Payload.Ranges) > 0 {
		resp.Destination = s.last.Payload.Ranges[0].A1()
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.last = pubsub.Event[copypaste.Notification]{}
	ok, err := s.mgr.Undo(r.Context())
	if !ok {
		respondJSON(w, http.StatusOK, undoResponse{})
		return
	}
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := s.save(r); err != nil {
		s.respondError(w, r, err)
		return
	}
	resp := undoResponse{Undone: true}
	if len(s.last.Payload.Ranges) > 0 {
		resp.Destination = s.last.Payload.Ranges[0].A1()
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCopied(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	respondJSON(w, http.StatusOK, rangesResponse{Ranges: a1All(s.mgr.CopiedRanges())})
}

func (s *Server) handleCancelCopy(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.mgr.CancelCopy() {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// save writes the sheet to the store, if there is one.
func (s *Server) save(r *http.Request) error {
	if s.opts.Store == nil {
		return nil
	}
	if s.opts.BeforeSave != nil {
		s.opts.BeforeSave()
	}
	if err := s.opts.Store.SaveSheet(r.Context(), s.sheet); err != nil {
		return fmt.Errorf("save sheet: %w", err)
	}
	log.Debug(log.CatWeb, "sheet saved", "sheet", s.sheet.Name())
	return nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return badRequest("invalid request body: " + err.Error())
	}
	return nil
}

// parseRange accepts A1 notation ("B2:C4") or the r0c0 form.
func parseRange(s string) (grid.Range, error) {
	if r, err := grid.ParseA1(s); err == nil {
		return r, nil
	}
	r, err := grid.ParseRange(s)
	if err != nil {
		return grid.Range{}, badRequest(fmt.Sprintf("invalid range %q", s))
	}
	return r, nil
}

func parseRanges(in []string) ([]grid.Range, error) {
	out := make([]grid.Range, 0, len(in))
	for _, s := range in {
		r, err := parseRange(s)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func a1All(ranges []grid.Range) []string {
	out := make([]string, 0, len(ranges))
	for _, r := range ranges {
		out = append(out, r.A1())
	}
	return out
}
