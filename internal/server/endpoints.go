package server

import (
	"context"
	"errors"
	"fmt"

	"brandscan/internal/kit"
	"brandscan/internal/scan"
)

// ErrBadRequest marks endpoint errors caused by the caller's input.
var ErrBadRequest = errors.New("bad request")

// ExtractRequest is the extract endpoint's input.
type ExtractRequest struct {
	URL string `json:"url"`
	// Refresh bypasses the result cache.
	Refresh bool `json:"refresh,omitempty"`
}

// DeleteRequest addresses one stored scan.
type DeleteRequest struct {
	ID string `json:"id"`
}

func (s *Server) buildEndpoints() {
	s.extract = kit.Chain(timed(s.log, "extract"))(s.extractEndpoint)
	s.historyList = kit.Chain(timed(s.log, "history_list"))(s.historyListEndpoint)
	s.historyGet = kit.Chain(timed(s.log, "history_get"))(s.historyGetEndpoint)
	s.historyDrop = kit.Chain(timed(s.log, "history_delete"))(s.historyDeleteEndpoint)
	s.historyClear = kit.Chain(timed(s.log, "history_clear"))(s.historyClearEndpoint)
}

func (s *Server) extractEndpoint(ctx context.Context, req any) (any, error) {
	r := req.(*ExtractRequest)
	target := scan.NormalizeURL(r.URL)
	if target == "" {
		return nil, fmt.Errorf("%w: url is required", ErrBadRequest)
	}

	if !r.Refresh {
		if cached, ok := s.cache.Get(target); ok {
			s.log.Debug("cache hit", "url", target)
			return cached, nil
		}
	}

	res, err := s.cfg.Scanner.Scan(ctx, target)
	if err != nil {
		return nil, err
	}

	if s.cfg.Store != nil {
		id, err := s.cfg.Store.Save(ctx, res.URL, res.Meta.Title, res.Colors.Primary, res.Logo.URL, res)
		if err != nil {
			s.log.Warn("history save failed", "url", target, "error", err)
		} else {
			res.ID = id
		}
	}

	s.cache.Add(target, res)
	return res, nil
}

func (s *Server) historyListEndpoint(ctx context.Context, _ any) (any, error) {
	if s.cfg.Store == nil {
		return nil, fmt.Errorf("%w: history is disabled", ErrBadRequest)
	}
	return s.cfg.Store.History(ctx)
}

func (s *Server) historyGetEndpoint(ctx context.Context, req any) (any, error) {
	r := req.(*DeleteRequest)
	if s.cfg.Store == nil {
		return nil, fmt.Errorf("%w: history is disabled", ErrBadRequest)
	}
	return s.cfg.Store.Get(ctx, r.ID)
}

func (s *Server) historyDeleteEndpoint(ctx context.Context, req any) (any, error) {
	r := req.(*DeleteRequest)
	if s.cfg.Store == nil {
		return nil, fmt.Errorf("%w: history is disabled", ErrBadRequest)
	}
	if err := s.cfg.Store.Delete(ctx, r.ID); err != nil {
		return nil, err
	}
	return map[string]string{"deleted": r.ID}, nil
}

func (s *Server) historyClearEndpoint(ctx context.Context, _ any) (any, error) {
	if s.cfg.Store == nil {
		return nil, fmt.Errorf("%w: history is disabled", ErrBadRequest)
	}
	n, err := s.cfg.Store.Clear(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]int64{"cleared": n}, nil
}
