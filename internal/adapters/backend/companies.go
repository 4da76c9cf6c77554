package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fairdesk/fairdesk/pkg/logger"
)

const (
	opCompanies      = "companies"
	opCompanyDetails = "company_details"
	opUpdateCompany  = "update_company"
)

// ErrCompanyNotFound is returned when the details RPC answers null.
var ErrCompanyNotFound = errors.New("backend: company not found")

// CompanyUpdate is the editable part of a company record. Empty optional
// strings are sent as null.
type CompanyUpdate struct {
	Name               string `json:"name"`
	Description        string `json:"description"`
	LogoURL            string `json:"logo_url"`
	WebsiteURL         string `json:"website_url"`
	RepresentativeInfo string `json:"representative_info"`
	AreaOfActivity     string `json:"area_of_activity"`
	StandNumber        string `json:"stand_number"`
	SponsorshipLevel   string `json:"sponsorship_level"`
	PhoneNumber        string `json:"phone_number"`
	Email              string `json:"email"`
	Address            string `json:"address"`
	IsActive           *bool  `json:"is_active"`
}

type updateCompanyParams struct {
	CompanyID          int64   `json:"p_company_id"`
	Name               string  `json:"p_name"`
	Description        string  `json:"p_description"`
	LogoURL            *string `json:"p_logo_url"`
	WebsiteURL         *string `json:"p_website_url"`
	RepresentativeInfo *string `json:"p_representative_info"`
	AreaOfActivity     *string `json:"p_area_of_activity"`
	StandNumber        *string `json:"p_stand_number"`
	SponsorshipLevel   *string `json:"p_sponsorship_level"`
	PhoneNumber        *string `json:"p_phone_number"`
	Email              *string `json:"p_email"`
	Address            string  `json:"p_address"`
	IsActive           *bool   `json:"p_is_active"`
}

type updateCompanyPayload struct {
	CompanyID          int64   `json:"company_id"`
	Name               string  `json:"name"`
	Description        string  `json:"description"`
	LogoURL            *string `json:"logo_url"`
	WebsiteURL         *string `json:"website_url"`
	RepresentativeInfo *string `json:"representative_info"`
	AreaOfActivity     *string `json:"area_of_activity"`
	StandNumber        *string `json:"stand_number"`
	SponsorshipLevel   *string `json:"sponsorship_level"`
	PhoneNumber        *string `json:"phone_number"`
	Email              *string `json:"email"`
	Address            string  `json:"address"`
	IsActive           *bool   `json:"is_active"`
}

// Companies lists companies for lang. A missing list is returned as [].
func (cl *Client) Companies(ctx context.Context, lang string) (json.RawMessage, error) {
	raw, err := cl.rpc(ctx, opCompanies, "companies", cl.anonKey, map[string]string{"p_lang": lang})
	if err != nil {
		return nil, err
	}
	if isEmptyBody(raw) {
		return json.RawMessage("[]"), nil
	}
	var env struct {
		Companies json.RawMessage `json:"companies"`
	}
	if err := decode(opCompanies, raw, &env); err != nil {
		return nil, err
	}
	if isEmptyBody(env.Companies) {
		return json.RawMessage("[]"), nil
	}
	return env.Companies, nil
}

// CompanyDetails returns one company in lang.
func (cl *Client) CompanyDetails(ctx context.Context, id int64, lang string) (json.RawMessage, error) {
	params := map[string]any{"p_company_id": id, "p_lang": lang}
	c := call{
		op:     opCompanyDetails,
		method: http.MethodPost,
		path:   "/rest/v1/rpc/get_company_details",
		apiKey: cl.serviceKey,
		bearer: cl.serviceKey,
		body:   params,
	}
	resp, err := cl.do(ctx, c)
	if err != nil {
		return nil, err
	}
	if !resp.ok() {
		return nil, statusError(opCompanyDetails, resp.status, resp.body)
	}
	if isEmptyBody(resp.body) {
		return nil, ErrCompanyNotFound
	}
	if !json.Valid(resp.body) {
		return nil, &Error{Op: opCompanyDetails, Category: CategoryDecode, Message: "malformed response body"}
	}
	return resp.body, nil
}

// UpdateCompany saves u through the update_company RPC. When the RPC fails or
// answers success=false, the update-company edge function is tried once.
func (cl *Client) UpdateCompany(ctx context.Context, token string, id int64, u CompanyUpdate) (json.RawMessage, error) {
	if token == "" {
		return nil, ErrMissingToken
	}

	params := updateCompanyParams{
		CompanyID:          id,
		Name:               u.Name,
		Description:        u.Description,
		LogoURL:            nullable(u.LogoURL),
		WebsiteURL:         nullable(u.WebsiteURL),
		RepresentativeInfo: nullable(u.RepresentativeInfo),
		AreaOfActivity:     nullable(u.AreaOfActivity),
		StandNumber:        nullable(u.StandNumber),
		SponsorshipLevel:   nullable(u.SponsorshipLevel),
		PhoneNumber:        nullable(u.PhoneNumber),
		Email:              nullable(u.Email),
		Address:            u.Address,
		IsActive:           u.IsActive,
	}
	raw, rpcErr := cl.rpc(ctx, opUpdateCompany, "update_company", token, params)
	if rpcErr == nil {
		if rejected, msg := rejection(raw); rejected {
			rpcErr = &Error{Op: opUpdateCompany, Category: CategoryRejected, Message: msg}
		}
	}
	if rpcErr == nil {
		return raw, nil
	}

	cl.log.Warn(ctx, "update_company rpc failed, trying edge function", logger.Error(rpcErr))

	company, err := cl.updateCompanyEdge(ctx, token, updateCompanyPayload(params))
	if err != nil {
		cl.log.Warn(ctx, "update-company edge function failed", logger.Error(err))
		return nil, rpcErr
	}
	return company, nil
}

func (cl *Client) updateCompanyEdge(ctx context.Context, token string, payload updateCompanyPayload) (json.RawMessage, error) {
	const op = "update_company_edge"
	resp, err := cl.function(ctx, op, "update-company", token, payload)
	if err != nil {
		return nil, err
	}
	if !resp.ok() {
		return nil, statusError(op, resp.status, resp.body)
	}
	var env struct {
		Success bool            `json:"success"`
		Company json.RawMessage `json:"company"`
		Error   string          `json:"error"`
	}
	if err := decode(op, resp.body, &env); err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, &Error{Op: op, Category: CategoryRejected, Status: resp.status, Message: env.Error}
	}
	if len(env.Company) == 0 {
		return json.RawMessage("null"), nil
	}
	return env.Company, nil
}

// rejection reports whether raw is an object with success=false.
func rejection(raw []byte) (bool, string) {
	var env struct {
		Success *bool  `json:"success"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(raw, &env) != nil || env.Success == nil || *env.Success {
		return false, ""
	}
	if env.Message != "" {
		return true, env.Message
	}
	return true, env.Error
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
