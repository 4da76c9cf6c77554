package backend

import (
	"context"
	"encoding/json"
)

const (
	opCreateUser      = "create_user"
	opRecordFairEntry = "record_fair_entry"
)

// NewUser is the payload of the create-user edge function.
type NewUser struct {
	Email               string  `json:"email"`
	Password            string  `json:"password"`
	FullName            string  `json:"full_name"`
	Title               string  `json:"title"`
	Institution         string  `json:"institution"`
	PhoneNumber         string  `json:"phone_number"`
	IsInEducationSector bool    `json:"is_in_education_sector"`
	EducationSectorType *string `json:"education_sector_type"`
	UserState           string  `json:"user_state"`
	UserProvince        string  `json:"user_province"`
}

// CreateUser registers an attendee account on behalf of the token's admin.
// The education sector type is dropped unless the user is in the sector.
func (cl *Client) CreateUser(ctx context.Context, token string, u NewUser) (json.RawMessage, error) {
	if token == "" {
		return nil, ErrMissingToken
	}
	if !u.IsInEducationSector {
		u.EducationSectorType = nil
	}
	resp, err := cl.function(ctx, opCreateUser, "create-user", token, u)
	if err != nil {
		return nil, err
	}
	if !resp.ok() {
		return nil, statusError(opCreateUser, resp.status, resp.body)
	}
	if isEmptyBody(resp.body) {
		return json.RawMessage("{}"), nil
	}
	if !json.Valid(resp.body) {
		return nil, &Error{Op: opCreateUser, Category: CategoryDecode, Message: "malformed response body"}
	}
	return resp.body, nil
}

// RecordFairEntry logs a fair entry for userID through the tetz_entry RPC.
func (cl *Client) RecordFairEntry(ctx context.Context, userID string) (json.RawMessage, error) {
	raw, err := cl.rpc(ctx, opRecordFairEntry, "tetz_entry", "", map[string]string{"p_user_id": userID})
	if err != nil {
		return nil, err
	}
	if isEmptyBody(raw) {
		return json.RawMessage("null"), nil
	}
	if !json.Valid(raw) {
		return nil, &Error{Op: opRecordFairEntry, Category: CategoryDecode, Message: "malformed response body"}
	}
	return raw, nil
}
