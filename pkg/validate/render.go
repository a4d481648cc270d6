package validate

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/lwmacct/261016-go-pkg-dashgen/pkg/dashboard"
	"github.com/lwmacct/261016-go-pkg-dashgen/pkg/tmpl"
)

// Render 以 ctx 渲染 text 并检查结果。
//
// 引擎错误与非法 JSON 记为错误；渲染超过 policy.SlowRender 记为警告。
// 严格模式下还检查输出大小与仪表盘结构。
func Render(engine *tmpl.Engine, text string, ctx map[string]any, policy Policy) Report {
	var r Report
	if engine == nil {
		engine = tmpl.New()
	}

	start := time.Now()
	out, err := engine.Render(text, ctx)
	r.RenderTime = time.Since(start)
	if err != nil {
		r.Errors = append(r.Errors, fmt.Sprintf("Template rendering failed: %v", err))
		return r
	}
	r.Size = len(out)
	slog.Debug("Validation render finished", "elapsed", r.RenderTime, "bytes", r.Size)

	if policy.SlowRender > 0 && r.RenderTime > policy.SlowRender {
		r.Warnings = append(r.Warnings,
			fmt.Sprintf("Template rendering took %.2fs - consider optimizing", r.RenderTime.Seconds()))
	}

	var parsed any
	if err := json.Unmarshal([]byte(out), &parsed); err != nil {
		r.Errors = append(r.Errors, fmt.Sprintf("Template rendering produces invalid JSON: %v (output: %s)",
			err, dashboard.Preview(out, policy.PreviewBytes)))
		return r
	}

	if !policy.Strict {
		return r
	}

	if policy.MaxOutputBytes > 0 && r.Size > policy.MaxOutputBytes {
		r.Warnings = append(r.Warnings,
			fmt.Sprintf("Large dashboard size (%d bytes) - may impact Splunk performance", r.Size))
	}
	if obj, ok := dashboardObject(parsed); ok {
		errs, warns := Dashboard(obj)
		r.Errors = append(r.Errors, errs...)
		r.Warnings = append(r.Warnings, warns...)
	}

	return r
}

// dashboardObject 取出仪表盘定义；完整模板文件渲染结果取其 dashboard 段
func dashboardObject(v any) (map[string]any, bool) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}
	if _, isTemplate := obj["template_info"]; isTemplate {
		inner, ok := obj["dashboard"].(map[string]any)
		return inner, ok
	}

	return obj, true
}
