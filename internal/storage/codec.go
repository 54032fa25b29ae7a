package storage

import (
	"encoding/json"
	"errors"

	"adversa/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

func EncodeAttackRecord(r model.AttackRecord) ([]byte, error) {
	return json.Marshal(r)
}

func DecodeAttackRecord(data []byte) (model.AttackRecord, error) {
	var record model.AttackRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return model.AttackRecord{}, err
	}
	if err := checkVersion(record.VersionedRecord); err != nil {
		return model.AttackRecord{}, err
	}
	return record, nil
}

func EncodeClassifierSummary(s model.ClassifierSummary) ([]byte, error) {
	return json.Marshal(s)
}

func DecodeClassifierSummary(data []byte) (model.ClassifierSummary, error) {
	var summary model.ClassifierSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return model.ClassifierSummary{}, err
	}
	if err := checkVersion(summary.VersionedRecord); err != nil {
		return model.ClassifierSummary{}, err
	}
	return summary, nil
}

func EncodeLossHistory(history []float64) ([]byte, error) {
	return json.Marshal(history)
}

func DecodeLossHistory(data []byte) ([]float64, error) {
	var history []float64
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, err
	}
	return history, nil
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}
