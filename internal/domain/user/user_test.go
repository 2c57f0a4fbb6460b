package user

import "testing"

func TestUpdateProfileChanges(t *testing.T) {
	bio := "new bio"
	req := UpdateProfileRequest{
		Name:    "  ",
		Profile: &ProfilePatch{Bio: &bio},
	}

	name, patch := req.Changes()
	if name != nil {
		t.Fatalf("blank name must be absent, got %q", *name)
	}
	if patch.Bio == nil || *patch.Bio != "new bio" {
		t.Fatalf("bio = %v", patch.Bio)
	}
	if patch.Location != nil {
		t.Fatalf("location must be absent, got %q", *patch.Location)
	}

	name, patch = UpdateProfileRequest{Name: " Ada "}.Changes()
	if name == nil || *name != "Ada" {
		t.Fatalf("name = %v, want Ada", name)
	}
	if patch != (ProfilePatch{}) {
		t.Fatalf("nil profile must yield an empty patch, got %+v", patch)
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Ada@Example.COM "); got != "ada@example.com" {
		t.Fatalf("NormalizeEmail = %q", got)
	}
}
