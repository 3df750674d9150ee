package pipeline

import "github.com/rs/zerolog"

// ProgressFunc receives best-effort checkpoint notifications. It runs on
// the orchestrator goroutine; panics are recovered and logged, never
// allowed to affect the run.
type ProgressFunc func(step string, payload map[string]any)

type progressStep struct {
	Percent int
	Desc    string
}

// Named checkpoints with their rough completion percentage.
var progressSteps = map[string]progressStep{
	"resolve:start":        {5, "开始解析标的"},
	"resolve:done":         {10, "标的解析完成"},
	"fetch:parallel:start": {15, "开始获取数据"},
	"fetch:parallel:done":  {30, "数据获取完成"},
	"detect:events":        {40, "事件检测完成"},
	"complete":             {100, "数据汇总完成"},
}

// emit invokes the callback with percent/desc attached to the payload.
func emit(log zerolog.Logger, progress ProgressFunc, step string, payload map[string]any) {
	if progress == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			log.Warn().Str("step", step).Interface("panic", r).Msg("progress callback panicked")
		}
	}()

	if payload == nil {
		payload = map[string]any{}
	}
	if s, ok := progressSteps[step]; ok {
		payload["progress_percent"] = s.Percent
		payload["progress_desc"] = s.Desc
	}
	progress(step, payload)
}
