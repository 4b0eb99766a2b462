package board_test

import (
	"context"
	"errors"
	"testing"

	"jobmate/board-service/internal/board"
	"jobmate/board-service/internal/model"
	"jobmate/board-service/internal/store"
)

func strp(s string) *string { return &s }

// ── RegisterUser ───────────────────────────────────────────────────────────

func TestRegisterUser_CreatesThenRefreshes(t *testing.T) {
	f := newFixture(t)
	ctx := as("u1")

	u, created, err := f.svc.RegisterUser(ctx, board.RegisterInput{
		Name: " Ana <b>Lima</b> ", Email: "ana@mail.test", Role: "Candidate",
	})
	if err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	if !created || u.ID != "u1" || u.Name != "Ana Lima" || u.Role != model.RoleCandidate || u.CreatedAt == nil {
		t.Errorf("first register = %+v created=%v", u, created)
	}

	// Completion works once the document exists.
	if _, err := f.svc.CompleteCandidateProfile(ctx, board.CandidateProfileInput{
		WorkExperience: "Agência", Skills: []string{"Go"}, ExperienceLevel: "2 anos",
		Phone: "+55 48 99999-0000", SalaryRange: ptr(5000),
	}); err != nil {
		t.Fatalf("CompleteCandidateProfile after register: %v", err)
	}

	u, created, err = f.svc.RegisterUser(ctx, board.RegisterInput{
		Name: "Ana L.", Email: "ana@mail.test", Role: model.RoleCandidate,
	})
	if err != nil {
		t.Fatalf("second RegisterUser: %v", err)
	}
	if created || u.Name != "Ana L." {
		t.Errorf("second register = %+v created=%v", u, created)
	}
	if len(u.Skills) != 1 || u.Skills[0] != "Go" || !u.SalaryRange.Valid {
		t.Errorf("refresh dropped profile fields: %+v", u)
	}
}

func TestRegisterUser_RecruiterShowsOnlyOwnJobs(t *testing.T) {
	f := newFixture(t)
	f.seedJob(t, openJob("mine", "r1"))
	f.seedJob(t, openJob("theirs", "r2"))

	if _, _, err := f.svc.RegisterUser(as("r1"), board.RegisterInput{
		Name: "Rita", Email: "rita@acme.test", Role: model.RoleRecruiter,
	}); err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	page, err := f.svc.ListJobs(as("r1"), board.ListQuery{})
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].ID != "mine" {
		t.Errorf("recruiter list = %+v, want only 'mine'", page.Items)
	}
}

func TestRegisterUser_Validation(t *testing.T) {
	f := newFixture(t)
	cases := []struct {
		in    board.RegisterInput
		field string
	}{
		{board.RegisterInput{Email: "a@b.test", Role: model.RoleCandidate}, "name"},
		{board.RegisterInput{Name: "A", Email: "not-an-email", Role: model.RoleCandidate}, "email"},
		{board.RegisterInput{Name: "A", Email: "a@b.test", Role: "admin"}, "role"},
	}
	for _, c := range cases {
		_, _, err := f.svc.RegisterUser(as("u1"), c.in)
		var verrs board.ValidationErrors
		if !errors.As(err, &verrs) || verrs[0].Field != c.field {
			t.Errorf("RegisterUser(%+v) err = %v, want validation on %s", c.in, err, c.field)
		}
	}
	if _, err := f.store.Get(context.Background(), model.CollectionUsers, "u1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("invalid input must not write, Get err = %v", err)
	}
}

func TestRegisterUser_RequiresUser(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.svc.RegisterUser(context.Background(), board.RegisterInput{
		Name: "A", Email: "a@b.test", Role: model.RoleCandidate,
	})
	if !errors.Is(err, board.ErrUnauthenticated) {
		t.Errorf("err = %v, want ErrUnauthenticated", err)
	}
}

// ── MyProfile / UpdateProfile ──────────────────────────────────────────────

func TestMyProfile(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, recruiter("r1", "Rita", "Acme"))

	u, err := f.svc.MyProfile(as("r1"))
	if err != nil || u.Company != "Acme" {
		t.Errorf("MyProfile = %+v, %v", u, err)
	}
	if _, err := f.svc.MyProfile(as("nobody")); !errors.Is(err, board.ErrNotFound) {
		t.Errorf("unknown user err = %v, want ErrNotFound", err)
	}
}

func TestUpdateProfile_MergesOnlyGivenFields(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, candidate("c1", "Ana", []string{"React"}, "1 ano", model.Salary(3000)))

	u, err := f.svc.UpdateProfile(as("c1"), board.ProfileInput{
		Phone:  strp("+55 48 98888-7777"),
		Skills: []string{"React", " Go "},
	})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if u.Name != "Ana" || u.ExperienceLevel != "1 ano" || u.SalaryRange.Amount != 3000 {
		t.Errorf("untouched fields changed: %+v", u)
	}
	if u.Phone != "+55 48 98888-7777" || len(u.Skills) != 2 || u.Skills[1] != "Go" {
		t.Errorf("updated fields = %+v", u)
	}
	if u.Role != model.RoleCandidate {
		t.Errorf("role = %q, want candidate", u.Role)
	}
}

func TestUpdateProfile_Validation(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, candidate("c1", "Ana", nil, "", model.SalaryExpectation{}))

	for _, in := range []board.ProfileInput{
		{Name: strp("")},
		{Email: strp("nope")},
		{Phone: strp("123")},
	} {
		var verrs board.ValidationErrors
		if _, err := f.svc.UpdateProfile(as("c1"), in); !errors.As(err, &verrs) {
			t.Errorf("UpdateProfile(%+v) err = %v, want ValidationErrors", in, err)
		}
	}
	if _, err := f.svc.UpdateProfile(as("nobody"), board.ProfileInput{Name: strp("X")}); !errors.Is(err, board.ErrNotFound) {
		t.Errorf("unknown user err = %v, want ErrNotFound", err)
	}
}

// ── Settings ───────────────────────────────────────────────────────────────

func TestSettings(t *testing.T) {
	f := newFixture(t)

	empty, err := f.svc.Settings(context.Background())
	if err != nil {
		t.Fatalf("Settings: %v", err)
	}
	if empty.Skills == nil || len(empty.Skills) != 0 || empty.ContractTypes == nil || empty.ExperienceLevels == nil {
		t.Errorf("missing catalog = %+v, want empty lists", empty)
	}

	doc, _ := store.Encode(model.Settings{
		Skills:           []string{"Go", "React"},
		ContractTypes:    []string{"CLT", "PJ"},
		ExperienceLevels: []string{"Júnior"},
	})
	if err := f.store.Set(context.Background(), model.CollectionSettings, model.GlobalSettingsID, doc); err != nil {
		t.Fatalf("seed settings: %v", err)
	}
	st, err := f.svc.Settings(context.Background())
	if err != nil {
		t.Fatalf("Settings: %v", err)
	}
	if len(st.Skills) != 2 || st.ContractTypes[1] != "PJ" || st.ExperienceLevels[0] != "Júnior" {
		t.Errorf("settings = %+v", st)
	}
}

// ── Application key ────────────────────────────────────────────────────────

func TestApplyToJob_RejectsUnderscoreUserID(t *testing.T) {
	f := newFixture(t)
	f.seedJob(t, openJob("j1", "rec"))

	_, err := f.svc.ApplyToJob(as("a_b"), "j1", "a_b")
	var verrs board.ValidationErrors
	if !errors.As(err, &verrs) || verrs[0].Field != "userId" {
		t.Errorf("err = %v, want validation on userId", err)
	}
	for id, want := range map[string]bool{"c1": true, "a_b": false, "": false} {
		if got := board.ValidUserID(id); got != want {
			t.Errorf("ValidUserID(%q) = %v, want %v", id, got, want)
		}
	}
}
