package dispatch

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// Invoke builds u and runs it with EVALSHA, falling back to EVAL when the
// script is not cached yet.
func Invoke(ctx context.Context, rdb redis.Scripter, u Unit) *redis.Cmd {
	body, args, err := Build(u)
	if err != nil {
		return failed(ctx, err)
	}
	return redis.NewScript(body).Run(ctx, rdb, nil, args...)
}

// InvokeAsync is Invoke run in its own goroutine. Every argument is applied
// before the goroutine starts, so cancelling ctx only abandons the reply.
// The channel receives exactly one command and is then closed.
func InvokeAsync(ctx context.Context, rdb redis.Scripter, u Unit) <-chan *redis.Cmd {
	ch := make(chan *redis.Cmd, 1)
	body, args, err := Build(u)
	if err != nil {
		ch <- failed(ctx, err)
		close(ch)
		return ch
	}
	script := redis.NewScript(body)
	go func() {
		defer close(ch)
		ch <- script.Run(ctx, rdb, nil, args...)
	}()
	return ch
}

func failed(ctx context.Context, err error) *redis.Cmd {
	cmd := redis.NewCmd(ctx)
	cmd.SetErr(err)
	return cmd
}
