package crm

import "testing"

func TestExtractConflictID(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		body string
		want string
	}{
		{
			name: "plain_token",
			body: "ID: 4242",
			want: "4242",
		},
		{
			name: "surrounding_prose",
			body: "Contact already exists. Existing ID: 2002",
			want: "2002",
		},
		{
			name: "json_wrapped",
			body: `{"status":"error","message":"Contact already exists. Existing ID: 31337"}`,
			want: "31337",
		},
		{
			name: "no_space_after_colon",
			body: "duplicate, ID:77",
			want: "77",
		},
		{
			name: "first_match_wins",
			body: "ID: 1 and later ID: 2",
			want: "1",
		},
		{
			name: "no_id_present",
			body: "a contact with this email already exists",
			want: "",
		},
		{
			name: "lowercase_token_ignored",
			body: "existing id: 555",
			want: "",
		},
		{
			name: "empty_body",
			body: "",
			want: "",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ExtractConflictID(tc.body)
			if got != tc.want {
				t.Fatalf("ExtractConflictID(%q)=%q, want %q", tc.body, got, tc.want)
			}
		})
	}
}
