package core

import "context"

// GoroutineExecutor runs each task on its own goroutine.
type GoroutineExecutor struct{}

func (GoroutineExecutor) Go(task func()) {
	if task == nil {
		return
	}
	go task()
}

// InlineExecutor runs tasks on the calling goroutine. Useful in tests and in
// hosts that already run the call on a worker.
type InlineExecutor struct{}

func (InlineExecutor) Go(task func()) {
	if task == nil {
		return
	}
	task()
}

// StaticAccessToken serves a fixed access token.
type StaticAccessToken string

func (t StaticAccessToken) AccessToken(context.Context) (string, error) {
	return string(t), nil
}

var (
	_ Executor            = GoroutineExecutor{}
	_ Executor            = InlineExecutor{}
	_ AccessTokenProvider = StaticAccessToken("")
)
