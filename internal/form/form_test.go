package form

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/neilotoole/slogt"
)

func emptyFields() Fields {
	return Fields{
		"name":     "",
		"email":    "",
		"password": "",
		"remember": false,
	}
}

func filledFields() Fields {
	return Fields{
		"name":     "john due",
		"email":    "john@due.com",
		"password": "password",
		"remember": true,
	}
}

func mustSet(t *testing.T, f *Form, field string, value any) {
	t.Helper()
	if err := f.Set(field, value); err != nil {
		t.Fatalf("Set(%q) returned error: %v", field, err)
	}
}

func TestNew_ClonesInitialFields(t *testing.T) {
	initial := Fields{"tags": []any{"a"}, "profile": map[string]any{"city": "Oslo"}}
	f := New(initial, WithLogger(slogt.New(t)))

	initial["tags"].([]any)[0] = "mutated"
	initial["profile"].(map[string]any)["city"] = "mutated"

	want := Fields{"tags": []any{"a"}, "profile": map[string]any{"city": "Oslo"}}
	if diff := cmp.Diff(want, f.Fields()); diff != "" {
		t.Fatalf("fields aliased caller map (-want +got):\n%s", diff)
	}
	if f.IsDirty() || f.Processing() || f.WasSuccessful() || f.HasErrors() {
		t.Fatalf("new form state = %+v, want all flags false and no errors", f.Snapshot())
	}
}

func TestReset_WholeFields(t *testing.T) {
	f := New(emptyFields())

	mustSet(t, f, "name", "mehdi saadi")
	mustSet(t, f, "email", "mehdi.0.saadi@gmail.com")
	mustSet(t, f, "password", "password")
	mustSet(t, f, "remember", true)
	if !f.IsDirty() {
		t.Fatalf("IsDirty = false after edits, want true")
	}

	f.Reset()

	if diff := cmp.Diff(emptyFields(), f.Fields()); diff != "" {
		t.Fatalf("Reset() fields mismatch (-want +got):\n%s", diff)
	}
	if f.IsDirty() {
		t.Fatalf("IsDirty = true after Reset, want false")
	}
}

func TestReset_DefinedFields(t *testing.T) {
	f := New(filledFields())

	mustSet(t, f, "name", "")
	mustSet(t, f, "email", "")

	f.Reset("name", "email")

	if diff := cmp.Diff(filledFields(), f.Fields()); diff != "" {
		t.Fatalf("Reset(name, email) fields mismatch (-want +got):\n%s", diff)
	}
}

func TestReset_DefinedField(t *testing.T) {
	f := New(filledFields())

	mustSet(t, f, "name", "")
	mustSet(t, f, "email", "")

	f.Reset("email")

	want := Fields{
		"name":     "",
		"email":    "john@due.com",
		"password": "password",
		"remember": true,
	}
	if diff := cmp.Diff(want, f.Fields()); diff != "" {
		t.Fatalf("Reset(email) fields mismatch (-want +got):\n%s", diff)
	}
	if !f.IsDirty() {
		t.Fatalf("IsDirty = false with name still edited, want true")
	}
}

func TestReset_IgnoresUnknownNames(t *testing.T) {
	f := New(filledFields())
	mustSet(t, f, "name", "")

	f.Reset("nope")

	if got, _ := f.Value("name"); got != "" {
		t.Fatalf("name = %v, want untouched empty string", got)
	}
	if f.Has("nope") {
		t.Fatalf("Reset added unknown key")
	}
}

func TestReset_Idempotent(t *testing.T) {
	f := New(filledFields())
	mustSet(t, f, "password", "changed")

	f.Reset()
	once := f.Fields()
	f.Reset()

	if diff := cmp.Diff(once, f.Fields()); diff != "" {
		t.Fatalf("second Reset changed fields (-once +twice):\n%s", diff)
	}
}

func TestReset_RestoresIndependentCopies(t *testing.T) {
	f := New(Fields{"tags": []any{"a", "b"}})

	f.Update(func(fields Fields) {
		fields["tags"].([]any)[0] = "z"
	})
	f.Reset("tags")
	f.Update(func(fields Fields) {
		fields["tags"].([]any)[1] = "y"
	})

	if diff := cmp.Diff(Fields{"tags": []any{"a", "b"}}, f.Defaults()); diff != "" {
		t.Fatalf("baseline mutated through fields (-want +got):\n%s", diff)
	}
}

func TestSet_UnknownField(t *testing.T) {
	f := New(emptyFields())

	err := f.Set("age", 3)
	if !errors.Is(err, ErrUnknownField) {
		t.Fatalf("Set(age) error = %v, want ErrUnknownField", err)
	}
	if f.IsDirty() {
		t.Fatalf("IsDirty = true after rejected Set, want false")
	}
}

func TestSet_BackToDefaultIsClean(t *testing.T) {
	f := New(filledFields())

	mustSet(t, f, "name", "someone")
	if !f.IsDirty() {
		t.Fatalf("IsDirty = false, want true")
	}
	mustSet(t, f, "name", "john due")
	if f.IsDirty() {
		t.Fatalf("IsDirty = true after restoring value by hand, want false")
	}
}

func TestUpdate_DropsUnknownKeys(t *testing.T) {
	f := New(emptyFields(), WithLogger(slogt.New(t)))

	f.Update(func(fields Fields) {
		fields["name"] = "ada"
		fields["admin"] = true
	})

	if f.Has("admin") {
		t.Fatalf("Has(admin) = true, want false")
	}
	if _, ok := f.Fields()["admin"]; ok {
		t.Fatalf("Update kept unknown key admin")
	}
	if got, _ := f.Value("name"); got != "ada" {
		t.Fatalf("name = %v, want ada", got)
	}
}

func TestFields_ReturnsCopy(t *testing.T) {
	f := New(Fields{"profile": map[string]any{"city": "Oslo"}})

	got := f.Fields()
	got["profile"].(map[string]any)["city"] = "Bergen"

	if f.IsDirty() {
		t.Fatalf("IsDirty = true after mutating a copy, want false")
	}
	v, _ := f.Value("profile")
	if diff := cmp.Diff(map[string]any{"city": "Oslo"}, v); diff != "" {
		t.Fatalf("profile mismatch (-want +got):\n%s", diff)
	}
}

func TestSetError_Single(t *testing.T) {
	f := New(emptyFields())
	f.SetError("name", "required")

	f.SetError("email", "bad")

	want := map[string]string{"name": "required", "email": "bad"}
	if diff := cmp.Diff(want, f.Errors()); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
	if msg, ok := f.Error("email"); !ok || msg != "bad" {
		t.Fatalf("Error(email) = %q, %v, want bad, true", msg, ok)
	}
}

func TestSetError_ThenBatch(t *testing.T) {
	f := New(emptyFields())

	f.SetError("email", "bad")
	f.SetErrors(map[string]string{"remember": "required"})

	want := map[string]string{"email": "bad", "remember": "required"}
	if diff := cmp.Diff(want, f.Errors()); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestSetErrors_OverwritesAndKeepsOthers(t *testing.T) {
	f := New(emptyFields())
	f.SetErrors(map[string]string{"name": "old", "password": "short"})

	f.SetErrors(map[string]string{"name": "new", "email": "taken"})

	want := map[string]string{"name": "new", "email": "taken", "password": "short"}
	if diff := cmp.Diff(want, f.Errors()); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestSetErrors_IgnoresUnknownFields(t *testing.T) {
	f := New(emptyFields(), WithLogger(slogt.New(t)))

	f.SetErrors(map[string]string{"age": "too young", "name": "required"})

	want := map[string]string{"name": "required"}
	if diff := cmp.Diff(want, f.Errors()); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestClearErrors_All(t *testing.T) {
	f := New(emptyFields())
	f.SetErrors(map[string]string{"name": "a", "email": "b"})

	f.ClearErrors()

	if f.HasErrors() {
		t.Fatalf("errors = %v, want empty", f.Errors())
	}
}

func TestClearErrors_Named(t *testing.T) {
	f := New(emptyFields())
	f.SetErrors(map[string]string{
		"name":     "name error",
		"email":    "email error",
		"password": "password error",
		"remember": "remember error",
	})

	f.ClearErrors("name", "email")

	want := map[string]string{
		"password": "password error",
		"remember": "remember error",
	}
	if diff := cmp.Diff(want, f.Errors()); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestClearErrors_SingleKeepsRest(t *testing.T) {
	f := New(emptyFields())
	f.SetErrors(map[string]string{"name": "a", "email": "b"})

	f.ClearErrors("name")

	if diff := cmp.Diff(map[string]string{"email": "b"}, f.Errors()); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestErrors_ReturnsCopy(t *testing.T) {
	f := New(emptyFields())
	f.SetError("name", "required")

	f.Errors()["name"] = "changed"

	if msg, _ := f.Error("name"); msg != "required" {
		t.Fatalf("Error(name) = %q, want required", msg)
	}
}

func TestKeys_Sorted(t *testing.T) {
	f := New(emptyFields())
	want := []string{"email", "name", "password", "remember"}
	if diff := cmp.Diff(want, f.Keys()); diff != "" {
		t.Fatalf("Keys mismatch (-want +got):\n%s", diff)
	}
}

func TestDeepCopy_RoundTrip(t *testing.T) {
	orig := Fields{
		"name":    "x",
		"tags":    []any{"a", map[string]any{"k": "v"}},
		"profile": map[string]any{"langs": []any{"go"}},
	}

	cp := DeepCopy(orig)
	if !DeepEqual(orig, cp) {
		t.Fatalf("DeepEqual(orig, copy) = false, want true")
	}

	cp["tags"].([]any)[1].(map[string]any)["k"] = "changed"
	cp["profile"].(map[string]any)["langs"].([]any)[0] = "rust"

	if orig["tags"].([]any)[1].(map[string]any)["k"] != "v" {
		t.Fatalf("mutating copy changed nested map in original")
	}
	if orig["profile"].(map[string]any)["langs"].([]any)[0] != "go" {
		t.Fatalf("mutating copy changed nested slice in original")
	}
}

func TestDeepCopy_Nil(t *testing.T) {
	got := DeepCopy(nil)
	if got == nil || len(got) != 0 {
		t.Fatalf("DeepCopy(nil) = %#v, want empty Fields", got)
	}
}

func TestDeepEqual_EmptyCollections(t *testing.T) {
	a := Fields{"tags": []any(nil)}
	b := Fields{"tags": []any{}}
	if !DeepEqual(a, b) {
		t.Fatalf("DeepEqual(nil slice, empty slice) = false, want true")
	}
	if DeepEqual(Fields{"n": 1.0}, Fields{"n": 2.0}) {
		t.Fatalf("DeepEqual(1, 2) = true, want false")
	}
}

func TestWithComparer_DrivesDirtiness(t *testing.T) {
	calls := 0
	f := New(emptyFields(), WithComparer(func(a, b Fields) bool {
		calls++
		return true
	}))
	mustSet(t, f, "name", "changed")

	if f.IsDirty() {
		t.Fatalf("IsDirty = true, want comparer's answer false")
	}
	if calls < 2 {
		t.Fatalf("comparer calls = %d, want at least 2", calls)
	}
}
