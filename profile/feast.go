package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	feastsdk "github.com/feast-dev/feast/sdk/go"
	feasttypes "github.com/feast-dev/feast/sdk/go/protos/feast/types"

	"github.com/rushteam/searchkit/core"
)

// 画像特征表中的特征名。特征引用格式为 "<table>:<feature>"。
const (
	featCategoryViews   = "category_views"
	featBrandPurchases  = "brand_purchases"
	featPriceMin        = "preferred_price_min"
	featPriceMax        = "preferred_price_max"
	featDeviceType      = "device_type"
	featActiveHourStart = "active_hour_start"
	featActiveHourEnd   = "active_hour_end"
	featPurchaseRegular = "purchase_regularity"
	featRecentClicks    = "recent_clicks"
	featUpdateTime      = "update_time"
)

// FeastProvider 是基于官方 Feast Go SDK 的画像实现。
//
// 使用官方 SDK (github.com/feast-dev/feast/sdk/go) 的 gRPC 客户端
// 从 Feature Store 在线存储获取用户画像特征。
//
// 设计原则（DDD）：
//   - 领域层：Provider 接口（provider.go）保持不变
//   - 基础设施层：FeastProvider 实现 Provider 接口
//   - 高内聚低耦合：通过接口抽象，可以替换实现
//
// 特征取值约定：
//   - 标量特征（价格带、活跃时段等）存为数值特征
//   - 映射特征（类目浏览、品牌购买）存为 JSON 字符串特征
//   - 特征缺失按零值处理，画像整行缺失返回 NOT_FOUND
type FeastProvider struct {
	client *feastsdk.GrpcClient

	// Project Feast 项目名称
	Project string

	// Table 画像特征表名，默认 "user_profile"
	Table string

	// Entity 实体键名，默认 "user_id"
	Entity string
}

// FeastOption 是 FeastProvider 的配置选项
type FeastOption func(*FeastProvider)

// WithFeatureTable 指定画像特征表名
func WithFeatureTable(table string) FeastOption {
	return func(p *FeastProvider) { p.Table = table }
}

// WithEntityName 指定实体键名
func WithEntityName(entity string) FeastOption {
	return func(p *FeastProvider) { p.Entity = entity }
}

// NewFeastProvider 创建一个基于 Feast 的画像 Provider。
//
// 参数：
//   - host: Feast Feature Server 主机地址，例如 "localhost"
//   - port: gRPC 端口，默认 6565
//   - project: 项目名称
func NewFeastProvider(host string, port int, project string, opts ...FeastOption) (*FeastProvider, error) {
	if port == 0 {
		port = 6565 // 默认 gRPC 端口
	}

	client, err := feastsdk.NewGrpcClient(host, port)
	if err != nil {
		return nil, fmt.Errorf("profile: create feast grpc client: %w", err)
	}

	p := &FeastProvider{
		client:  client,
		Project: project,
		Table:   "user_profile",
		Entity:  "user_id",
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Profile 从 Feast 在线存储获取用户画像（实现 Provider 接口）
func (p *FeastProvider) Profile(ctx context.Context, userID string) (*core.UserProfile, error) {
	if userID == "" {
		return nil, ErrProfileNotFound
	}

	names := []string{
		featCategoryViews, featBrandPurchases,
		featPriceMin, featPriceMax,
		featDeviceType, featActiveHourStart, featActiveHourEnd,
		featPurchaseRegular, featRecentClicks, featUpdateTime,
	}
	refs := make([]string, len(names))
	for i, name := range names {
		refs[i] = p.Table + ":" + name
	}

	req := &feastsdk.OnlineFeaturesRequest{
		Features: refs,
		Entities: []feastsdk.Row{
			{p.Entity: feastsdk.StrVal(userID)},
		},
		Project: p.Project,
	}

	resp, err := p.client.GetOnlineFeatures(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("profile: feast get online features: %w", err)
	}

	rows := resp.Rows()
	if len(rows) == 0 {
		return nil, ErrProfileNotFound
	}
	row := rows[0]

	// SDK 的 Row 按完整特征引用（"<table>:<feature>"）作为键
	get := func(name string) interface{} {
		if v, ok := row[p.Table+":"+name]; ok {
			return convertValue(v)
		}
		return nil
	}

	profile := &core.UserProfile{
		UserID:             userID,
		CategoryViews:      jsonCountMap(get(featCategoryViews)),
		BrandPurchases:     jsonCountMap(get(featBrandPurchases)),
		PreferredPriceMin:  asFloat(get(featPriceMin)),
		PreferredPriceMax:  asFloat(get(featPriceMax)),
		DeviceType:         asString(get(featDeviceType)),
		ActiveHourStart:    int(asFloat(get(featActiveHourStart))),
		ActiveHourEnd:      int(asFloat(get(featActiveHourEnd))),
		PurchaseRegularity: asFloat(get(featPurchaseRegular)),
		RecentClicks:       jsonStringSlice(get(featRecentClicks)),
	}
	if ts := asFloat(get(featUpdateTime)); ts > 0 {
		profile.UpdateTime = time.Unix(int64(ts), 0)
	}

	if emptyProfile(profile) {
		return nil, ErrProfileNotFound
	}
	return profile, nil
}

// Close 关闭客户端连接（实现 Provider 接口）。
// 官方 SDK 的连接由 gRPC 库管理，这里只释放引用。
func (p *FeastProvider) Close() error {
	p.client = nil
	return nil
}

// emptyProfile 判断 Feast 返回的整行是否全部为零值（视同画像不存在）
func emptyProfile(profile *core.UserProfile) bool {
	return len(profile.CategoryViews) == 0 &&
		len(profile.BrandPurchases) == 0 &&
		len(profile.RecentClicks) == 0 &&
		profile.PreferredPriceMin == 0 &&
		profile.PreferredPriceMax == 0 &&
		profile.DeviceType == "" &&
		profile.PurchaseRegularity == 0
}

// convertValue 把 protobuf Value 解包为 Go 标量：数值统一为 float64，文本为 string。
func convertValue(val *feasttypes.Value) interface{} {
	if val == nil {
		return nil
	}

	switch v := val.Val.(type) {
	case *feasttypes.Value_StringVal:
		return v.StringVal
	case *feasttypes.Value_Int32Val:
		return float64(v.Int32Val)
	case *feasttypes.Value_Int64Val:
		return float64(v.Int64Val)
	case *feasttypes.Value_FloatVal:
		return float64(v.FloatVal)
	case *feasttypes.Value_DoubleVal:
		return v.DoubleVal
	case *feasttypes.Value_BoolVal:
		if v.BoolVal {
			return float64(1)
		}
		return float64(0)
	case *feasttypes.Value_BytesVal:
		return string(v.BytesVal)
	default:
		// 列表等其余类型走字符串化后再解析
		strVal := fmt.Sprintf("%v", val)
		if f, err := strconv.ParseFloat(strVal, 64); err == nil {
			return f
		}
		return strVal
	}
}

func asFloat(v interface{}) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case string:
		if f, err := strconv.ParseFloat(t, 64); err == nil {
			return f
		}
	}
	return 0
}

func asString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// jsonCountMap 解析 JSON 字符串特征（如 {"electronics": 12}）为计数映射
func jsonCountMap(v interface{}) map[string]int64 {
	s, ok := v.(string)
	if !ok || s == "" {
		return nil
	}
	var m map[string]int64
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil
	}
	return m
}

// jsonStringSlice 解析 JSON 字符串特征（如 ["p1","p2"]）为字符串列表
func jsonStringSlice(v interface{}) []string {
	s, ok := v.(string)
	if !ok || s == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil
	}
	return out
}

var _ Provider = (*FeastProvider)(nil)
