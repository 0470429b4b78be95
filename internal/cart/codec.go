package cart

import "encoding/json"

// Encode はカート明細をJSON配列にする（空なら []）。
func Encode(items []Item) ([]byte, error) {
	if items == nil {
		items = []Item{}
	}
	return json.Marshal(items)
}

// Decode はJSON配列から明細を復元する。
// 読めたデータも不変条件（数量1以上・ID重複なし）に合わせて直す。
func Decode(data []byte) ([]Item, error) {
	var raw []Item
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return normalize(raw), nil
}
