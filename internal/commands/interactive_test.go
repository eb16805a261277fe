package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInteractive(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want bool
	}{
		{name: "no command", args: nil, want: false},
		{name: "review", args: []string{"review", "--unknown"}, want: true},
		{name: "review help", args: []string{"review", "--help"}, want: false},
		{name: "words view", args: []string{"words"}, want: true},
		{name: "words ls", args: []string{"words", "ls"}, want: false},
		{name: "chat view", args: []string{"chat", "https://chat.example.com/room/abc?token=t"}, want: true},
		{name: "chat plain", args: []string{"chat", "--plain", "https://chat.example.com/room/abc"}, want: false},
		{name: "chat plain false", args: []string{"chat", "--plain=false", "https://chat.example.com/room/abc"}, want: true},
		{name: "chat log", args: []string{"chat", "log", "abc"}, want: false},
		{name: "doctor", args: []string{"doctor"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Interactive(tt.args))
		})
	}
}
