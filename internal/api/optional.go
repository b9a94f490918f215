package api

import "encoding/json"

// Optional はJSONフィールドの「未指定」「null」「値あり」を区別して保持します。
// 部分更新リクエストで、指定されたフィールドのみを適用するために使用します。
type Optional[T any] struct {
	Value T
	Set   bool
	Null  bool
}

// UnmarshalJSON はフィールドが存在した場合のみ呼ばれ、Setをtrueにします。
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		var zero T
		o.Value = zero
		o.Null = true
		return nil
	}
	o.Null = false
	return json.Unmarshal(data, &o.Value)
}
