package user

import "testing"

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		pwd      string
		usrAttrs []string
		wantErr  bool
	}{
		{name: "valid", pwd: "G00d.Pa$$"},
		{name: "too short", pwd: "G0.d", wantErr: true},
		{name: "whitespace", pwd: "G00d Pa$$", wantErr: true},
		{name: "all numeric", pwd: "12345678", wantErr: true},
		{name: "no uppercase", pwd: "g00d.pa$$", wantErr: true},
		{name: "no digit", pwd: "Good.Pass", wantErr: true},
		{name: "no special", pwd: "G00dPass", wantErr: true},
		{name: "similar to attr", pwd: "T3st.User!", usrAttrs: []string{"t3st.user"}, wantErr: true},
		{name: "dissimilar attr ok", pwd: "G00d.Pa$$", usrAttrs: []string{"someone@test.test"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := validatePassword(tt.pwd, tt.usrAttrs...); (err != nil) != tt.wantErr {
				t.Errorf("validatePassword() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
