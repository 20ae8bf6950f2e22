package framework

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRunnerWait(t *testing.T) {
	errBoom := errors.New("boom")
	errBang := errors.New("bang")
	cases := []struct {
		name   string
		errs   []error
		expect func(t *testing.T, err error)
	}{
		{"all ok", []error{nil, nil}, func(t *testing.T, err error) {
			require.NoError(t, err)
		}},
		{"canceled ignored", []error{context.Canceled, nil}, func(t *testing.T, err error) {
			require.NoError(t, err)
		}},
		{"wrapped canceled reported", []error{fmt.Errorf("reset: %w", context.Canceled)}, func(t *testing.T, err error) {
			require.Error(t, err)
			require.True(t, errors.Is(err, context.Canceled))
		}},
		{"single", []error{nil, errBoom}, func(t *testing.T, err error) {
			require.Equal(t, errBoom, err)
		}},
		{"multiple", []error{errBoom, errBang}, func(t *testing.T, err error) {
			var agg *AggregatedError
			require.True(t, errors.As(err, &agg))
			require.Len(t, agg.Errors, 2)
			require.True(t, errors.Is(err, errBoom))
			require.True(t, errors.Is(err, errBang))
		}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := NewRunner()
			for n, err := range c.errs {
				err := err
				r.Go(NamedRun(string(rune('a'+n)), RunnableFunc(func(context.Context) error {
					return err
				})))
			}
			c.expect(t, r.Wait())
		})
	}
}

type testCloser struct {
	closed chan struct{}
	count  int
}

func (c *testCloser) Close() error {
	c.count++
	if c.count == 1 {
		close(c.closed)
	}
	return nil
}

func TestRunWithContextCloser(t *testing.T) {
	t.Run("cancel", func(t *testing.T) {
		c := &testCloser{closed: make(chan struct{})}
		ctx, cancel := context.WithCancel(context.Background())
		time.AfterFunc(20*time.Millisecond, cancel)
		err := RunWithContextCloser(ctx, c, func() error {
			<-c.closed
			return errors.New("closed")
		})
		require.Equal(t, context.Canceled, err)
		require.Equal(t, 1, c.count)
	})
	t.Run("exit", func(t *testing.T) {
		c := &testCloser{closed: make(chan struct{})}
		err := RunWithContextCloser(context.Background(), c, func() error {
			return nil
		})
		require.NoError(t, err)
		require.Equal(t, 1, c.count)
	})
}

func TestMustComplete(t *testing.T) {
	t.Run("interrupted", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		r := NewRunnerWith(ctx)
		r.Go(MustComplete(NamedRun("settle", RunnableFunc(func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		}))))
		time.AfterFunc(20*time.Millisecond, cancel)
		err := r.Wait()
		var interrupted *InterruptedError
		require.True(t, errors.As(err, &interrupted))
		require.Equal(t, "settle", interrupted.Name)
		require.Equal(t, "settle interrupted: context canceled", err.Error())
	})
	t.Run("completed", func(t *testing.T) {
		r := NewRunner()
		r.Go(MustComplete(RunnableFunc(func(context.Context) error {
			return nil
		})))
		require.NoError(t, r.Wait())
	})
	t.Run("failed before cancel", func(t *testing.T) {
		errBoom := errors.New("boom")
		r := NewRunner()
		r.Go(MustComplete(RunnableFunc(func(context.Context) error {
			return errBoom
		})))
		require.Equal(t, errBoom, r.Wait())
	})
}
