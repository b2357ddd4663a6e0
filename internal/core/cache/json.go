package cache

import (
	"context"
	"encoding/json"
	"time"
)

// LoadJSON 结构化读穿缓存。c 为 nil 时直接回源；
// 缓存内容解不出来（结构变更后的旧数据）时删掉重新回源一次。
func LoadJSON[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, load func(context.Context) (*T, error)) (*T, error) {
	if c == nil {
		return load(ctx)
	}
	fetch := func() ([]byte, error) {
		return c.GetOrLoad(ctx, key, ttl, func(ctx context.Context) ([]byte, error) {
			v, err := load(ctx)
			if err != nil {
				return nil, err
			}
			return json.Marshal(v)
		})
	}

	b, err := fetch()
	if err != nil {
		return nil, err
	}
	out, err := decode[T](b)
	if err == nil {
		return out, nil
	}
	if e := c.Del(ctx, key); e != nil {
		return nil, err
	}
	if b, err = fetch(); err != nil {
		return nil, err
	}
	return decode[T](b)
}

func decode[T any](b []byte) (*T, error) {
	if string(b) == "null" {
		return nil, nil
	}
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
