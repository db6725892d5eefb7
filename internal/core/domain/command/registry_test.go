package command

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunUnregisteredAction(t *testing.T) {
	r := &Registry{}

	result := r.Run(context.Background(), "nope", nil)

	assert.False(t, result.Success)
	assert.Nil(t, result.Data)
}

func TestRunReturnsHandlerData(t *testing.T) {
	r := &Registry{}
	r.Register("ping", func(any) (Command, error) {
		return Func(func(context.Context) (any, error) {
			return "pong", nil
		}), nil
	})

	result := r.Run(context.Background(), "ping", nil)

	assert.True(t, result.Success)
	assert.Equal(t, "pong", result.Data)
}

func TestRunFailedConstruction(t *testing.T) {
	r := &Registry{}
	r.Register("broken", func(any) (Command, error) {
		return nil, errors.New("bad arguments")
	})

	result := r.Run(context.Background(), "broken", nil)

	assert.False(t, result.Success)
}

func TestRunRecoversExecutionError(t *testing.T) {
	r := &Registry{}
	r.Register("fail", func(any) (Command, error) {
		return Func(func(context.Context) (any, error) {
			return nil, errors.New("mock error")
		}), nil
	})

	result := r.Run(context.Background(), "fail", nil)

	assert.False(t, result.Success)
}

func TestRunRecoversPanic(t *testing.T) {
	r := &Registry{}
	r.Register("panic", func(any) (Command, error) {
		return Func(func(context.Context) (any, error) {
			panic("boom")
		}), nil
	})

	assert.NotPanics(t, func() {
		result := r.Run(context.Background(), "panic", nil)
		assert.False(t, result.Success)
	})
}

func TestRegisterOverwritesSilently(t *testing.T) {
	r := &Registry{}
	r.Register("ping", func(any) (Command, error) {
		return Func(func(context.Context) (any, error) { return "old", nil }), nil
	})
	r.Register("ping", func(any) (Command, error) {
		return Func(func(context.Context) (any, error) { return "new", nil }), nil
	})

	result := r.Run(context.Background(), "ping", nil)

	assert.True(t, result.Success)
	assert.Equal(t, "new", result.Data)
}

func TestClear(t *testing.T) {
	r := &Registry{}
	r.Register("ping", func(any) (Command, error) {
		return Func(func(context.Context) (any, error) { return nil, nil }), nil
	})

	r.Clear()

	assert.False(t, r.Run(context.Background(), "ping", nil).Success)
}

func TestDecodeArgs(t *testing.T) {
	type args struct {
		SongID int `json:"songId"`
	}

	type TestCase struct {
		description string
		input       any
		want        int
	}

	testCases := []TestCase{
		{
			description: "raw json off the wire",
			input:       json.RawMessage(`{"songId": 7}`),
			want:        7,
		},
		{
			description: "in-process struct",
			input:       args{SongID: 9},
			want:        9,
		},
		{
			description: "nil leaves zero value",
			input:       nil,
			want:        0,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			var got args
			require.NoError(t, DecodeArgs(testCase.input, &got))
			assert.Equal(t, testCase.want, got.SongID)
		})
	}
}

func TestDecodeArgsMalformed(t *testing.T) {
	var dst struct{}
	err := DecodeArgs(json.RawMessage("not json"), &dst)
	require.Error(t, err)
}
