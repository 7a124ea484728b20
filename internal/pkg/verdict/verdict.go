package verdict

import (
	"fmt"
	"math"
	"strings"
)

// Summarize 将厂商返回的原始结果转换为展示用结论。
// 用户端列表和管理端视图都必须经过这里，不允许各自再实现一份规则。
// 所有字段都可能缺失，缺失时回退到 "-"，任何输入都不会 panic。
func Summarize(service string, result map[string]interface{}) string {
	switch service {
	case "deepfake":
		return deepfakeVerdict(result)
	case "face":
		return faceVerdict(result)
	case "wad":
		return wadVerdict(result)
	case "offensive":
		return offensiveVerdict(result)
	case "properties":
		return propertiesVerdict(result)
	case "celebrity":
		return celebrityVerdict(result)
	default:
		return "-"
	}
}

func deepfakeVerdict(result map[string]interface{}) string {
	// 优先 type.deepfake，其次 score，最后顶层 deepfake
	score, ok := nestedFloat(result, "type", "deepfake")
	if !ok {
		score, ok = floatField(result, "score")
	}
	if !ok {
		score, ok = floatField(result, "deepfake")
	}
	if !ok {
		return "-"
	}
	if score > 0.5 {
		return "Likely Fake"
	}
	return "Likely Real"
}

func faceVerdict(result map[string]interface{}) string {
	faces := arrayField(result, "faces")
	if len(faces) == 0 {
		return "No face"
	}
	return fmt.Sprintf("%d face(s)", len(faces))
}

func wadVerdict(result map[string]interface{}) string {
	var hits []string
	for _, key := range []string{"weapon", "alcohol", "drugs"} {
		score, _ := floatField(result, key)
		if score > 0.5 {
			hits = append(hits, key)
		}
	}
	if len(hits) > 0 {
		return fmt.Sprintf("Detected (%s)", strings.Join(hits, ", "))
	}
	return "Clean"
}

func offensiveVerdict(result map[string]interface{}) string {
	prob, ok := nestedFloat(result, "offensive", "prob")
	if !ok {
		prob, ok = floatField(result, "prob")
	}
	if !ok {
		return "-"
	}
	if prob > 0.5 {
		return fmt.Sprintf("Offensive (%d%%)", int(math.Round(prob*100)))
	}
	return "Clean"
}

func propertiesVerdict(result map[string]interface{}) string {
	width, wok := floatField(result, "width")
	height, hok := floatField(result, "height")
	if !wok && !hok {
		return "-"
	}
	w, h := "?", "?"
	if wok {
		w = fmt.Sprintf("%d", int(width))
	}
	if hok {
		h = fmt.Sprintf("%d", int(height))
	}
	return w + "x" + h
}

func celebrityVerdict(result map[string]interface{}) string {
	entries := arrayField(result, "celebrities")
	if len(entries) == 0 {
		entries = arrayField(result, "faces")
	}

	var names []string
	for _, entry := range entries {
		m, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		if name, ok := m["name"].(string); ok && name != "" {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return "None"
	}
	return strings.Join(names, ", ")
}

func floatField(m map[string]interface{}, key string) (float64, bool) {
	if m == nil {
		return 0, false
	}
	switch v := m[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func nestedFloat(m map[string]interface{}, outer, inner string) (float64, bool) {
	if m == nil {
		return 0, false
	}
	nested, ok := m[outer].(map[string]interface{})
	if !ok {
		return 0, false
	}
	return floatField(nested, inner)
}

func arrayField(m map[string]interface{}, key string) []interface{} {
	if m == nil {
		return nil
	}
	arr, _ := m[key].([]interface{})
	return arr
}
