// Package utility chứa các hàm tiện ích dùng chung giữa các service.
package utility

import (
	"go.mongodb.org/mongo-driver/bson"
)

// ToMap chuyển một struct (hoặc map) sang map[string]interface{} thông qua BSON
// marshal/unmarshal để tôn trọng các bson tag của model (tên field, omitempty).
func ToMap(s interface{}) (map[string]interface{}, error) {
	data, err := bson.Marshal(s)
	if err != nil {
		return nil, err
	}

	var out map[string]interface{}
	if err := bson.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
