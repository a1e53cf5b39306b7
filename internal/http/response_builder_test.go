package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRedirect_SetsFlashCookie(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/giving", nil)
	rec := httptest.NewRecorder()

	Redirect("/giving").Success("Saved.").Flash(FlashWarning, "Check totals.").Write(rec, r)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want 303", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "/giving" {
		t.Errorf("Location = %q", got)
	}
	got := flashesFrom(rec)
	want := []Flash{{FlashSuccess, "Saved."}, {FlashWarning, "Check totals."}}
	if len(got) != len(want) {
		t.Fatalf("flashes = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("flash[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestRedirect_KeepsUnreadFlashes(t *testing.T) {
	first := httptest.NewRecorder()
	Redirect("/login").Danger("Access denied!").Write(first, httptest.NewRequest(http.MethodGet, "/giving", nil))

	r := httptest.NewRequest(http.MethodGet, "/login", nil)
	for _, c := range first.Result().Cookies() {
		r.AddCookie(c)
	}
	second := httptest.NewRecorder()
	Redirect("/dashboard").Success("Welcome Admin!").Write(second, r)

	got := flashesFrom(second)
	if len(got) != 2 || got[0].Message != "Access denied!" || got[1].Message != "Welcome Admin!" {
		t.Errorf("flashes = %+v", got)
	}
}

func TestRedirect_WithoutFlashLeavesCookieAlone(t *testing.T) {
	rec := httptest.NewRecorder()
	Redirect("/dashboard").Write(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if len(rec.Result().Cookies()) != 0 {
		t.Errorf("unexpected cookies: %v", rec.Result().Cookies())
	}
}

func TestFlashes_Capped(t *testing.T) {
	b := Redirect("/")
	for i := 0; i < maxFlashes+3; i++ {
		b.Success("x")
	}
	rec := httptest.NewRecorder()
	b.Write(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if got := len(flashesFrom(rec)); got != maxFlashes {
		t.Errorf("stored %d flashes, want %d", got, maxFlashes)
	}
}

func TestPopFlashes_ClearsCookie(t *testing.T) {
	first := httptest.NewRecorder()
	Redirect("/").Success("once").Write(first, httptest.NewRequest(http.MethodGet, "/", nil))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range first.Result().Cookies() {
		r.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	got := popFlashes(rec, r)
	if len(got) != 1 || got[0].Message != "once" {
		t.Fatalf("popFlashes = %+v", got)
	}

	var cleared bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == flashCookie && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("flash cookie not expired after pop")
	}
}

func TestReadFlashes_IgnoresGarbage(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: flashCookie, Value: "not-base64!"})
	if got := readFlashes(r); len(got) != 0 {
		t.Errorf("readFlashes = %+v, want none", got)
	}
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name    string
		builder *ResponseBuilder
		code    int
		body    string
	}{
		{"bad request", BadRequestError("Invalid month, expected YYYY-MM."), http.StatusBadRequest, "Invalid month, expected YYYY-MM.\n"},
		{"not found", NotFoundError("missing"), http.StatusNotFound, "missing\n"},
		{"internal", InternalServerError(genericFailure), http.StatusInternalServerError, genericFailure + "\n"},
		{"custom header", ErrorResponse(http.StatusTooManyRequests, "slow down").Header("Retry-After", "60"), http.StatusTooManyRequests, "slow down\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.builder.Write(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			if rec.Code != tt.code {
				t.Errorf("status = %d, want %d", rec.Code, tt.code)
			}
			if rec.Body.String() != tt.body {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.body)
			}
			if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
				t.Error("missing nosniff header")
			}
			if rec.Header().Get("Content-Type") != "text/plain; charset=utf-8" {
				t.Errorf("Content-Type = %q", rec.Header().Get("Content-Type"))
			}
		})
	}
}
