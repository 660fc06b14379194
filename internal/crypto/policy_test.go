package crypto

import "testing"

func TestCheckPasswordPolicy(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{name: "fixture password", password: "Loc123!", wantErr: nil},
		{name: "long passphrase", password: "correct horse battery staple", wantErr: nil},
		{name: "too short", password: "abc12", wantErr: ErrPasswordTooShort},
		{name: "short after trimming", password: "   abc12   ", wantErr: ErrPasswordTooShort},
		{name: "contains password", password: "mypassword123", wantErr: ErrPasswordContainsWord},
		{name: "contains password any case", password: "MyPaSsWoRd!", wantErr: ErrPasswordContainsWord},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := CheckPasswordPolicy(tt.password); err != tt.wantErr {
				t.Errorf("CheckPasswordPolicy(%q) error = %v, want %v", tt.password, err, tt.wantErr)
			}
		})
	}
}
