package validator

import "testing"

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"user@example.com", true},
		{"first.last+tag@sub.example.ru", true},
		{"no-at-sign", false},
		{"user@", false},
		{"@example.com", false},
		{"user@example", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := ValidateEmail(tt.email); got != tt.want {
			t.Errorf("ValidateEmail(%q) = %v, want %v", tt.email, got, tt.want)
		}
	}
}

func TestValidatePhone(t *testing.T) {
	tests := []struct {
		phone string
		want  bool
	}{
		{"+79161234567", true},
		{"79161234567", true},
		{"+7 (916) 123-45-67", true},
		{"12345", false},
		{"", false},
		{"abcdefghijk", false},
	}

	for _, tt := range tests {
		if got := ValidatePhone(tt.phone); got != tt.want {
			t.Errorf("ValidatePhone(%q) = %v, want %v", tt.phone, got, tt.want)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		want     bool
	}{
		{"secret", true},
		{"p@ssw0rd!", true},
		{"short", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := ValidatePassword(tt.password); got != tt.want {
			t.Errorf("ValidatePassword(%q) = %v, want %v", tt.password, got, tt.want)
		}
	}
}

func TestValidateNamePart(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"Иван", true},
		{"Anna-Maria", true},
		{"O'Brien", true},
		{"A", false},
		{"User123", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := ValidateNamePart(tt.name); got != tt.want {
			t.Errorf("ValidateNamePart(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestFormatPhone(t *testing.T) {
	tests := []struct {
		phone string
		want  string
	}{
		{"+79161234567", "+79161234567"},
		{"89161234567", "+79161234567"},
		{"79161234567", "+79161234567"},
		{"8 (916) 123-45-67", "+79161234567"},
		{"9161234567", "+79161234567"},
	}

	for _, tt := range tests {
		if got := FormatPhone(tt.phone); got != tt.want {
			t.Errorf("FormatPhone(%q) = %q, want %q", tt.phone, got, tt.want)
		}
	}
}

func TestFormatName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"иван", "Иван"},
		{"ПЕТРОВ", "Петров"},
		{"анна-мария", "Анна-Мария"},
		{"иван  петров", "Иван Петров"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := FormatName(tt.name); got != tt.want {
			t.Errorf("FormatName(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}
