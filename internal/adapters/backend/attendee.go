package backend

import (
	"bytes"
	"context"
	"net/http"

	"github.com/fairdesk/fairdesk/internal/domain/attendee"
)

const opFindAttendee = "find_attendee"

type findAttendeeParams struct {
	ActiveQRCode string `json:"p_active_qr_code"`
	PhoneNumber  string `json:"p_phone_number"`
	Email        string `json:"p_email"`
	FullName     string `json:"p_full_name"`
	Lang         string `json:"p_lang"`
}

// FindAttendee implements attendee.Lookup over the find_user_by_criteria RPC.
//
// An empty, null or [] body and a 404 all mean "no match" and yield an empty
// record. A row set is reduced to its first row. A {success:true,user:{...}}
// envelope is unwrapped to the user.
func (cl *Client) FindAttendee(ctx context.Context, q attendee.Query) (attendee.Record, error) {
	params := findAttendeeParams{
		PhoneNumber: q.Phone,
		Email:       q.Email,
		FullName:    q.FullName,
		Lang:        cl.lang,
	}
	c := call{
		op:     opFindAttendee,
		method: http.MethodPost,
		path:   "/rest/v1/rpc/find_user_by_criteria",
		apiKey: cl.anonKey,
		body:   params,
		prefer: "return=representation",
	}
	resp, err := cl.do(ctx, c)
	if err != nil {
		return nil, err
	}
	if resp.status == http.StatusNotFound {
		return attendee.Record{}, nil
	}
	if !resp.ok() {
		return nil, statusError(opFindAttendee, resp.status, resp.body)
	}
	if isEmptyBody(resp.body) {
		return attendee.Record{}, nil
	}

	if body := bytes.TrimSpace(resp.body); body[0] == '[' {
		var rows []attendee.Record
		if err := decode(opFindAttendee, body, &rows); err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			return attendee.Record{}, nil
		}
		return unwrapEnvelope(rows[0]), nil
	}

	var rec attendee.Record
	if err := decode(opFindAttendee, resp.body, &rec); err != nil {
		return nil, err
	}
	return unwrapEnvelope(rec), nil
}

func unwrapEnvelope(rec attendee.Record) attendee.Record {
	ok, _ := rec["success"].(bool)
	user, isObj := rec["user"].(map[string]any)
	if ok && isObj && len(user) > 0 {
		return attendee.Record(user)
	}
	return rec
}
