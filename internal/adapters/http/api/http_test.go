package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fairdesk/fairdesk/internal/adapters/backend"
	"github.com/fairdesk/fairdesk/internal/adapters/http/api"
	service "github.com/fairdesk/fairdesk/internal/app"
	"github.com/fairdesk/fairdesk/internal/domain/attendee"
	"github.com/fairdesk/fairdesk/internal/domain/contact"
	. "github.com/smartystreets/goconvey/convey"
)

// mockDeps implements api.Dependencies with canned answers.
type mockDeps struct {
	searchRes attendee.Result
	searchErr error
	lastCrit  attendee.Criterion

	loginErr   error
	sessionErr error
	lastToken  string

	reportErr error

	companyErr error
	lastUpdate backend.CompanyUpdate
	lastID     int64
	lastLang   string

	lastNewUser backend.NewUser
	createErr   error

	lastEntry string
}

func (m *mockDeps) Search(_ context.Context, c attendee.Criterion) (attendee.Result, error) {
	m.lastCrit = c
	return m.searchRes, m.searchErr
}

func (m *mockDeps) ExtractContact(raw string) contact.Contact { return contact.Extract(raw) }

func (m *mockDeps) Login(_ context.Context, email, _ string) (service.Login, error) {
	if m.loginErr != nil {
		return service.Login{}, m.loginErr
	}
	return service.Login{
		User:        service.AdminUser{ID: "u1", Email: email, Name: "Ada", Role: "admin"},
		AccessToken: "at", RefreshToken: "rt",
	}, nil
}

func (m *mockDeps) Session(_ context.Context, token string) (service.AdminUser, error) {
	m.lastToken = token
	return service.AdminUser{ID: "u1", Email: "a@fair.org", Name: "Ada", Role: "admin"}, m.sessionErr
}

func (m *mockDeps) Logout(_ context.Context, token string) error {
	m.lastToken = token
	return nil
}

func (m *mockDeps) CreateUser(_ context.Context, token string, u backend.NewUser) (json.RawMessage, error) {
	m.lastToken = token
	m.lastNewUser = u
	return json.RawMessage(`{"id":"new"}`), m.createErr
}

func (m *mockDeps) Dashboard(_ context.Context, token string) (json.RawMessage, error) {
	m.lastToken = token
	return json.RawMessage(`{"general_stats":{"total_users":3}}`), m.reportErr
}

func (m *mockDeps) LocationReport(context.Context, string) (json.RawMessage, error) {
	return json.RawMessage(`{"top_10_states":[]}`), m.reportErr
}

func (m *mockDeps) Overview(context.Context, string) (service.Overview, error) {
	return service.Overview{
		Stats:     json.RawMessage(`{"a":1}`),
		Locations: json.RawMessage(`{"b":2}`),
	}, m.reportErr
}

func (m *mockDeps) Companies(_ context.Context, lang string) (json.RawMessage, error) {
	m.lastLang = lang
	return json.RawMessage(`[{"id":1}]`), m.companyErr
}

func (m *mockDeps) Company(_ context.Context, id int64, lang string) (json.RawMessage, error) {
	m.lastID, m.lastLang = id, lang
	if m.companyErr != nil {
		return nil, m.companyErr
	}
	return json.RawMessage(`{"id":1}`), nil
}

func (m *mockDeps) UpdateCompany(_ context.Context, token string, id int64, u backend.CompanyUpdate) (json.RawMessage, error) {
	m.lastToken, m.lastID, m.lastUpdate = token, id, u
	return json.RawMessage(`{"id":1}`), m.companyErr
}

func (m *mockDeps) RecordFairEntry(_ context.Context, userID string) (json.RawMessage, error) {
	m.lastEntry = userID
	return json.RawMessage(`{"success":true}`), nil
}

func newHandler(deps *mockDeps) http.Handler {
	mux := http.NewServeMux()
	api.NewServer(deps).Register(mux)
	return api.RequestIDMiddleware(mux)
}

func do(h http.Handler, method, target, body, token string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeMap(rec *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return out
}

func TestSearchEndpoint(t *testing.T) {
	Convey("Given the API server", t, func() {
		deps := &mockDeps{}
		h := newHandler(deps)

		Convey("When the attendee is found", func() {
			deps.searchRes = attendee.Result{
				Record:     attendee.Record{"id": "att-1"},
				SearchType: attendee.SearchQRPhone,
				Attempts:   1,
			}
			rec := do(h, http.MethodGet, "/api/users?qrCode=BEGIN%3AVCARD%0ATEL%3A1", "", "")

			Convey("Then 200 with the user is returned", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				body := decodeMap(rec)
				So(body["success"], ShouldEqual, true)
				So(body["user"].(map[string]any)["id"], ShouldEqual, "att-1")
				So(body["searchType"], ShouldEqual, "qr phone")
				So(deps.lastCrit.QRPayload, ShouldEqual, "BEGIN:VCARD\nTEL:1")
				So(rec.Header().Get(api.HeaderRequestID), ShouldNotBeEmpty)
			})
		})

		Convey("When no attendee matches", func() {
			deps.searchErr = attendee.ErrNotFound
			rec := do(h, http.MethodGet, "/api/users?email=a@b.com", "", "")

			Convey("Then 404 with the not_found code is returned", func() {
				So(rec.Code, ShouldEqual, http.StatusNotFound)
				body := decodeMap(rec)
				So(body["success"], ShouldEqual, false)
				So(body["code"], ShouldEqual, "not_found")
			})
		})

		Convey("When the criterion is invalid", func() {
			deps.searchErr = &attendee.ValidationError{Message: attendee.MsgTooManyCriteria}
			rec := do(h, http.MethodGet, "/api/users?email=a@b.com&phone=1", "", "")

			Convey("Then 400 with the validation code and message is returned", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
				body := decodeMap(rec)
				So(body["code"], ShouldEqual, "validation_error")
				So(body["message"], ShouldEqual, attendee.MsgTooManyCriteria)
			})
		})

		Convey("When the backend fails", func() {
			deps.searchErr = &attendee.BackendError{SearchType: attendee.SearchDirectEmail, Err: errors.New("timeout")}
			rec := do(h, http.MethodGet, "/api/users?email=a@b.com", "", "")

			Convey("Then 502 with the backend code is returned", func() {
				So(rec.Code, ShouldEqual, http.StatusBadGateway)
				So(decodeMap(rec)["code"], ShouldEqual, "backend_error")
			})
		})

		Convey("When an inbound request id is supplied", func() {
			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			req.Header.Set(api.HeaderRequestID, "req-123")
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			Convey("Then it is echoed back", func() {
				So(rec.Header().Get(api.HeaderRequestID), ShouldEqual, "req-123")
				So(decodeMap(rec)["status"], ShouldEqual, "ok")
			})
		})
	})
}

func TestTestVCardEndpoint(t *testing.T) {
	Convey("Given the API server", t, func() {
		h := newHandler(&mockDeps{})

		Convey("When a vCard is posted", func() {
			rec := do(h, http.MethodPost, "/api/test-vcard", `{"qrContent":"BEGIN:VCARD\nTEL;TYPE=CELL:905551234567\nEMAIL:a@b.com\nEND:VCARD"}`, "")

			Convey("Then the extracted contact is returned", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				body := decodeMap(rec)
				result := body["result"].(map[string]any)
				So(result["phone"], ShouldEqual, "905551234567")
				So(result["email"], ShouldEqual, "a@b.com")
				So(body["fields"].(map[string]any)["TEL"], ShouldEqual, "905551234567")
			})
		})

		Convey("When the body is not JSON", func() {
			rec := do(h, http.MethodPost, "/api/test-vcard", `nope`, "")
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestAuthEndpoints(t *testing.T) {
	Convey("Given the API server", t, func() {
		deps := &mockDeps{}
		h := newHandler(deps)

		Convey("When logging in", func() {
			rec := do(h, http.MethodPost, "/api/auth/login", `{"email":"a@fair.org","password":"pw"}`, "")

			Convey("Then the user and session are returned", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				body := decodeMap(rec)
				So(body["session"].(map[string]any)["access_token"], ShouldEqual, "at")
				So(body["user"].(map[string]any)["role"], ShouldEqual, "admin")
			})
		})

		Convey("When logging in without a password", func() {
			rec := do(h, http.MethodPost, "/api/auth/login", `{"email":"a@fair.org"}`, "")

			Convey("Then the missing field is named", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeMap(rec)["message"], ShouldContainSubstring, "password is required")
			})
		})

		Convey("When a non-admin logs in", func() {
			deps.loginErr = service.ErrForbidden
			rec := do(h, http.MethodPost, "/api/auth/login", `{"email":"s@fair.org","password":"pw"}`, "")
			So(rec.Code, ShouldEqual, http.StatusForbidden)
		})

		Convey("When credentials are rejected", func() {
			deps.loginErr = service.ErrUnauthorized
			rec := do(h, http.MethodPost, "/api/auth/login", `{"email":"a@fair.org","password":"bad"}`, "")
			So(rec.Code, ShouldEqual, http.StatusUnauthorized)
		})

		Convey("When checking the session without a token", func() {
			rec := do(h, http.MethodGet, "/api/auth/session", "", "")
			So(rec.Code, ShouldEqual, http.StatusUnauthorized)
		})

		Convey("When checking the session with a token", func() {
			rec := do(h, http.MethodGet, "/api/auth/session", "", "tok")

			Convey("Then the token is forwarded and echoed", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(deps.lastToken, ShouldEqual, "tok")
				session := decodeMap(rec)["session"].(map[string]any)
				So(session["access_token"], ShouldEqual, "tok")
			})
		})

		Convey("When logging out", func() {
			rec := do(h, http.MethodPost, "/api/auth/logout", "", "tok")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(decodeMap(rec)["success"], ShouldEqual, true)
		})

		Convey("When creating a user with an invalid email", func() {
			rec := do(h, http.MethodPost, "/api/auth/create-user", `{"email":"nope","password":"secret1","full_name":"N"}`, "tok")
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeMap(rec)["message"], ShouldContainSubstring, "email must be a valid email")
		})

		Convey("When creating a user", func() {
			rec := do(h, http.MethodPost, "/api/auth/create-user",
				`{"email":"n@b.com","password":"secret1","full_name":"New User","is_in_education_sector":true,"education_sector_type":"k12"}`, "tok")

			Convey("Then the payload is forwarded", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(deps.lastNewUser.FullName, ShouldEqual, "New User")
				So(*deps.lastNewUser.EducationSectorType, ShouldEqual, "k12")
			})
		})

		Convey("When the backend rejects the new user", func() {
			deps.createErr = &backend.Error{Op: "create_user", Category: backend.CategoryStatus, Status: http.StatusConflict, Message: "already exists"}
			rec := do(h, http.MethodPost, "/api/auth/create-user", `{"email":"n@b.com","password":"secret1","full_name":"N"}`, "tok")

			Convey("Then the upstream status is passed through", func() {
				So(rec.Code, ShouldEqual, http.StatusConflict)
				So(decodeMap(rec)["message"], ShouldEqual, "already exists")
			})
		})
	})
}

func TestReportEndpoints(t *testing.T) {
	Convey("Given the API server", t, func() {
		deps := &mockDeps{}
		h := newHandler(deps)

		Convey("When the dashboard is requested", func() {
			rec := do(h, http.MethodGet, "/api/dashboard", "", "tok")
			So(rec.Code, ShouldEqual, http.StatusOK)
			data := decodeMap(rec)["data"].(map[string]any)
			So(data, ShouldContainKey, "general_stats")
		})

		Convey("When the overview is requested", func() {
			rec := do(h, http.MethodGet, "/api/overview", "", "tok")
			So(rec.Code, ShouldEqual, http.StatusOK)
			data := decodeMap(rec)["data"].(map[string]any)
			So(data, ShouldContainKey, "stats")
			So(data, ShouldContainKey, "locations")
		})

		Convey("When the backend is down", func() {
			deps.reportErr = &backend.Error{Op: "user_stats", Category: backend.CategoryTransport, Message: "request failed"}
			rec := do(h, http.MethodGet, "/api/location-report", "", "tok")
			So(rec.Code, ShouldEqual, http.StatusBadGateway)
		})

		Convey("When no token is sent", func() {
			rec := do(h, http.MethodGet, "/api/dashboard", "", "")
			So(rec.Code, ShouldEqual, http.StatusUnauthorized)
		})
	})
}

func TestCompanyEndpoints(t *testing.T) {
	Convey("Given the API server", t, func() {
		deps := &mockDeps{}
		h := newHandler(deps)

		Convey("When listing companies", func() {
			rec := do(h, http.MethodPost, "/api/companies", `{"p_lang":"en"}`, "")

			Convey("Then the list is wrapped", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				body := decodeMap(rec)
				So(body["code"], ShouldEqual, "SUCCESS")
				So(body["companies"], ShouldHaveLength, 1)
				So(deps.lastLang, ShouldEqual, "en")
			})
		})

		Convey("When listing without a language", func() {
			rec := do(h, http.MethodPost, "/api/companies", `{}`, "")
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When fetching one company", func() {
			rec := do(h, http.MethodGet, "/api/companies/7?lang=en", "", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(deps.lastID, ShouldEqual, int64(7))
			So(deps.lastLang, ShouldEqual, "en")
		})

		Convey("When the company id is not numeric", func() {
			rec := do(h, http.MethodGet, "/api/companies/abc", "", "")
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the company does not exist", func() {
			deps.companyErr = service.ErrCompanyNotFound
			rec := do(h, http.MethodGet, "/api/companies/9", "", "")
			So(rec.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When updating a company", func() {
			rec := do(h, http.MethodPut, "/api/companies/3", `{"name":"Acme","is_active":true}`, "tok")

			Convey("Then the update is forwarded with the token", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(deps.lastToken, ShouldEqual, "tok")
				So(deps.lastID, ShouldEqual, int64(3))
				So(deps.lastUpdate.Name, ShouldEqual, "Acme")
				So(*deps.lastUpdate.IsActive, ShouldBeTrue)
			})
		})

		Convey("When updating without a token", func() {
			rec := do(h, http.MethodPut, "/api/companies/3", `{"name":"Acme"}`, "")
			So(rec.Code, ShouldEqual, http.StatusUnauthorized)
		})

		Convey("When the method is not allowed", func() {
			rec := do(h, http.MethodDelete, "/api/companies/3", "", "tok")
			So(rec.Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}

func TestFairEntryEndpoint(t *testing.T) {
	Convey("Given the API server", t, func() {
		deps := &mockDeps{}
		h := newHandler(deps)

		Convey("When an entry is recorded", func() {
			rec := do(h, http.MethodPost, "/api/fair-entry", `{"p_user_id":"u9"}`, "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(deps.lastEntry, ShouldEqual, "u9")
		})

		Convey("When the user id is blank", func() {
			rec := do(h, http.MethodPost, "/api/fair-entry", `{"p_user_id":"  "}`, "")
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeMap(rec)["message"], ShouldContainSubstring, "p_user_id must not be blank")
		})
	})
}

func TestKindError(t *testing.T) {
	Convey("Given a wrapped kind error", t, func() {
		cause := errors.New("boom")
		err := api.WrapKind("op", api.ErrBadRequest, cause)

		Convey("Then both the kind and the cause match", func() {
			So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "bad request: boom")
		})

		Convey("Then a bare kind prints the kind", func() {
			So(api.NewKind("op", api.ErrUnauthorized).Error(), ShouldEqual, api.ErrUnauthorized.Error())
		})
	})
}
