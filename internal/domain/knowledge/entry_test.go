package knowledge

import "testing"

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name     string
		id       int
		failure  string
		solution string
		wantErr  bool
	}{
		{"valid", 0, "Jenkins Build Timeout", "Increase timeout", false},
		{"negative id", -1, "x", "y", true},
		{"blank failure", 1, "   ", "y", true},
		{"blank solution", 1, "x", "", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.id, tc.failure, "cause", tc.solution)
			if (err != nil) != tc.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestEntry_IndexText(t *testing.T) {
	e := Reconstruct(3, "Docker Build Failure - Permission Denied",
		"User lacks *daemon* access",
		"1.Add user to docker group\n2.Restart docker")

	want := "failure: Docker Build Failure  Permission Denied, " +
		"root_cause: User lacks daemon access, " +
		"solution: Add user to docker group Restart docker"
	if got := e.IndexText(); got != want {
		t.Errorf("IndexText() =\n%q\nwant\n%q", got, want)
	}
}

func TestRenumber(t *testing.T) {
	in := []Entry{
		Reconstruct(10, "a", "", "x"),
		Reconstruct(7, "b", "", "y"),
	}
	out := Renumber(in)
	for i, e := range out {
		if e.ID() != i {
			t.Errorf("entry %d has ID %d", i, e.ID())
		}
	}
	if out[1].Failure() != "b" {
		t.Errorf("renumber changed content: %q", out[1].Failure())
	}
	if in[0].ID() != 10 {
		t.Error("renumber mutated input")
	}
}
