package http

import (
	"fmt"
	"net/http"
	"net/url"

	"churchledger/internal/core"
	"churchledger/internal/log"
)

// entryPage backs the attendance, giving and expense forms.
type entryPage struct {
	Values         url.Values
	Attendance     []core.Attendance
	Giving         []core.Giving
	PaymentMethods []core.PaymentMethod
}

func (s *Server) today() url.Values {
	return url.Values{"date": {s.Now().Format(core.DateLayout)}}
}

func (s *Server) attendancePage(r *http.Request, values url.Values) entryPage {
	recent, err := s.Entries.RecentAttendance(r.Context())
	if err != nil {
		log.FromContext(r.Context()).WithComponent(log.ComponentHTTP).
			LogError(r.Context(), "Failed to list recent attendance", err, log.OpList, nil)
	}
	return entryPage{Values: values, Attendance: recent}
}

func (s *Server) givingPage(r *http.Request, values url.Values) entryPage {
	recent, err := s.Entries.RecentGiving(r.Context())
	if err != nil {
		log.FromContext(r.Context()).WithComponent(log.ComponentHTTP).
			LogError(r.Context(), "Failed to list recent giving", err, log.OpList, nil)
	}
	return entryPage{Values: values, Giving: recent}
}

func (s *Server) handleAttendanceForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "attendance.html", view{
		Title: "Attendance",
		Data:  s.attendancePage(r, s.today()),
	})
}

func (s *Server) handleRecordAttendance(w http.ResponseWriter, r *http.Request) {
	a, err := s.Entries.RecordAttendance(r.Context(), actor(r), attendanceInput(r.PostForm))
	if msg, ok := validationMessage(err); ok {
		s.render(w, r, http.StatusUnprocessableEntity, "attendance.html", view{
			Title: "Attendance",
			Error: msg,
			Data:  s.attendancePage(r, FormValues(r.PostForm, attendanceFields...)),
		})
		return
	}
	if err != nil {
		serverError(w, r, log.OpCreate, err)
		return
	}
	Redirect("/attendance").Success(fmt.Sprintf("Attendance for %s saved successfully.", a.Date)).Write(w, r)
}

func (s *Server) handleGivingForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "giving.html", view{
		Title: "Giving",
		Data:  s.givingPage(r, s.today()),
	})
}

func (s *Server) handleRecordGiving(w http.ResponseWriter, r *http.Request) {
	g, err := s.Entries.RecordGiving(r.Context(), actor(r), givingInput(r.PostForm))
	if msg, ok := validationMessage(err); ok {
		s.render(w, r, http.StatusUnprocessableEntity, "giving.html", view{
			Title: "Giving",
			Error: msg,
			Data:  s.givingPage(r, FormValues(r.PostForm, givingFields...)),
		})
		return
	}
	if err != nil {
		serverError(w, r, log.OpCreate, err)
		return
	}
	Redirect("/giving").Success(fmt.Sprintf("Tithe & Offering for %s saved successfully.", g.Date)).Write(w, r)
}

func (s *Server) handleExpenseForm(w http.ResponseWriter, r *http.Request) {
	values := s.today()
	values.Set("payment_method", string(core.PaymentCash))
	s.render(w, r, http.StatusOK, "add_expense.html", view{
		Title: "Add expense",
		Data:  entryPage{Values: values, PaymentMethods: core.PaymentMethods},
	})
}

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	_, err := s.Entries.AddExpense(r.Context(), actor(r), expenseInput(r.PostForm))
	if msg, ok := validationMessage(err); ok {
		s.render(w, r, http.StatusUnprocessableEntity, "add_expense.html", view{
			Title: "Add expense",
			Error: msg,
			Data:  entryPage{Values: FormValues(r.PostForm, expenseFields...), PaymentMethods: core.PaymentMethods},
		})
		return
	}
	if err != nil {
		serverError(w, r, log.OpCreate, err)
		return
	}
	Redirect("/dashboard").Success("Expense added and pending approval.").Write(w, r)
}
