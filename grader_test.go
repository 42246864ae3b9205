package coachlens

import "testing"

func TestGrade(t *testing.T) {
	tests := []struct {
		name      string
		user      string
		reference string
		want      bool
	}{
		{
			name:      "exact match",
			user:      "gradient descent",
			reference: "gradient descent",
			want:      true,
		},
		{
			name:      "case and whitespace insensitive",
			user:      "  Gradient Descent ",
			reference: "gradient descent",
			want:      true,
		},
		{
			name:      "empty reference never matches",
			user:      "anything at all",
			reference: "",
			want:      false,
		},
		{
			name:      "empty user answer fails",
			user:      "",
			reference: "gradient descent",
			want:      false,
		},
		{
			name:      "paraphrase with full token overlap",
			user:      "it uses gradient descent for optimization",
			reference: "gradient descent optimization",
			want:      true,
		},
		{
			name:      "unrelated answer fails",
			user:      "random guessing",
			reference: "gradient descent optimization",
			want:      false,
		},
		{
			name:      "partial overlap below threshold fails",
			user:      "gradient",
			reference: "gradient descent converges toward local minima",
			want:      false,
		},
		{
			name:      "substring tokens count as matches",
			user:      "count the neighbor",
			reference: "counts the neighbors",
			want:      true,
		},
	}

	grader := NewGrader()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := grader.Grade(tt.user, tt.reference); got != tt.want {
				t.Errorf("Grade(%q, %q) = %v, want %v", tt.user, tt.reference, got, tt.want)
			}
		})
	}
}
