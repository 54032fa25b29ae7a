package main

import (
	"encoding/json"
	"fmt"
	"os"

	advapi "adversa/pkg/adversa"
)

func loadAttackRequestFromConfig(path string) (advapi.AttackRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return advapi.AttackRequest{}, err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return advapi.AttackRequest{}, err
	}

	var req advapi.AttackRequest
	if v, ok := asString(raw["classifier"]); ok {
		req.Classifier = v
	}
	if v, ok := asString(raw["goal"]); ok {
		req.Goal = v
	}
	if v, ok := asString(raw["metric"]); ok {
		req.Metric = v
	}
	if v, ok := asFloat64(raw["magnitude"]); ok {
		req.Magnitude = v
	}
	if v, ok := asFloat64(raw["sigma"]); ok {
		req.Sigma = v
	}
	if v, ok := asFloat64(raw["lr"]); ok {
		req.LearningRate = v
	}
	if v, ok := asFloat64(raw["min_lr"]); ok {
		req.MinLearningRate = v
	}
	if v, ok := asBool(raw["lr_tuning"]); ok {
		req.LRTuning = v
	}
	if v, ok := asInt(raw["plateau_length"]); ok {
		req.PlateauLength = v
	}
	if v, ok := asInt(raw["samples_per_draw"]); ok {
		req.SamplesPerDraw = v
	}
	if v, ok := asInt(raw["max_queries"]); ok {
		req.MaxQueries = v
	}
	if v, ok := asInt64(raw["seed"]); ok {
		req.Seed = v
	}
	if v, ok := asInt(raw["label"]); ok {
		req.Label = v
	}
	if v, ok := asInt(raw["target"]); ok {
		req.Target = v
	}
	if v, ok := asBool(raw["verbose"]); ok {
		req.Verbose = v
	}
	if v, ok := raw["input"].([]any); ok {
		vec, err := toFloat64Slice(v)
		if err != nil {
			return advapi.AttackRequest{}, fmt.Errorf("config input: %w", err)
		}
		req.Input = vec
	}
	if v, ok := asString(raw["input_file"]); ok && len(req.Input) == 0 {
		vec, err := readInputVector(v)
		if err != nil {
			return advapi.AttackRequest{}, err
		}
		req.Input = vec
	}

	return req, nil
}

func loadOrDefaultAttackRequest(configPath string) (advapi.AttackRequest, error) {
	if configPath == "" {
		return advapi.AttackRequest{}, nil
	}
	req, err := loadAttackRequestFromConfig(configPath)
	if err != nil {
		return advapi.AttackRequest{}, fmt.Errorf("load config: %w", err)
	}
	return req, nil
}

func overrideFromFlags(req *advapi.AttackRequest, set map[string]bool, flagValue map[string]any) error {
	for name := range set {
		v, ok := flagValue[name]
		if !ok {
			continue
		}
		switch name {
		case "classifier":
			req.Classifier = v.(string)
		case "goal":
			req.Goal = v.(string)
		case "metric":
			req.Metric = v.(string)
		case "eps":
			req.Magnitude = v.(float64)
		case "sigma":
			req.Sigma = v.(float64)
		case "lr":
			req.LearningRate = v.(float64)
		case "min-lr":
			req.MinLearningRate = v.(float64)
		case "lr-tuning":
			req.LRTuning = v.(bool)
		case "plateau":
			req.PlateauLength = v.(int)
		case "samples":
			req.SamplesPerDraw = v.(int)
		case "max-queries":
			req.MaxQueries = v.(int)
		case "seed":
			req.Seed = v.(int64)
		case "label":
			req.Label = v.(int)
		case "target":
			req.Target = v.(int)
		}
	}
	return nil
}

func parseInputVector(inline string) ([]float64, error) {
	var vec []float64
	if err := json.Unmarshal([]byte(inline), &vec); err != nil {
		return nil, fmt.Errorf("parse input vector: %w", err)
	}
	if len(vec) == 0 {
		return nil, fmt.Errorf("input vector is empty")
	}
	return vec, nil
}

func readInputVector(path string) ([]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseInputVector(string(data))
}

func toFloat64Slice(values []any) ([]float64, error) {
	vec := make([]float64, 0, len(values))
	for i, v := range values {
		f, ok := asFloat64(v)
		if !ok {
			return nil, fmt.Errorf("element %d is not a number", i)
		}
		vec = append(vec, f)
	}
	return vec, nil
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asBool(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

func asInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case float64:
		return int(x), true
	default:
		return 0, false
	}
}

func asInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case float64:
		return int64(x), true
	default:
		return 0, false
	}
}

func asFloat64(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	default:
		return 0, false
	}
}
