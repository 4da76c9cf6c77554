package backend

import (
	"context"
	"encoding/json"
)

const (
	opUserStats      = "user_stats"
	opLocationReport = "location_report"
)

// UserStats returns the get_user_stats report as raw JSON.
func (cl *Client) UserStats(ctx context.Context, token string) (json.RawMessage, error) {
	return cl.report(ctx, opUserStats, "get_user_stats", token)
}

// LocationReport returns the get_user_location_report report as raw JSON.
func (cl *Client) LocationReport(ctx context.Context, token string) (json.RawMessage, error) {
	return cl.report(ctx, opLocationReport, "get_user_location_report", token)
}

func (cl *Client) report(ctx context.Context, op, fn, token string) (json.RawMessage, error) {
	if token == "" {
		return nil, ErrMissingToken
	}
	raw, err := cl.rpc(ctx, op, fn, token, nil)
	if err != nil {
		return nil, err
	}
	if isEmptyBody(raw) {
		return json.RawMessage("{}"), nil
	}
	if !json.Valid(raw) {
		return nil, &Error{Op: op, Category: CategoryDecode, Message: "malformed response body"}
	}
	return raw, nil
}
