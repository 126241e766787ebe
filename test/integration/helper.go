package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// 集成测试辅助工具
// 封装HTTP请求、JSON解析等重复代码，测试文件只关注业务场景。
// 测试依赖一个运行中的服务实例（默认 http://localhost:8080），
// 服务不可用时自动跳过，不会让单元测试流水线失败。

const (
	// BaseURL API基础URL
	BaseURL = "http://localhost:8080/api/v1"
	// PingURL 健康检查URL
	PingURL = "http://localhost:8080/ping"
	// Timeout HTTP请求超时时间
	Timeout = 10 * time.Second
)

// Response 统一响应结构
type Response struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// AuthData 注册/登录响应数据
type AuthData struct {
	User         UserData `json:"user"`
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	ExpiresIn    int64    `json:"expires_in"`
}

// UserData 用户信息
type UserData struct {
	ID       uint   `json:"id"`
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
	Role     string `json:"role"`
}

// BookData 图书响应数据
type BookData struct {
	ID            uint    `json:"id"`
	Title         string  `json:"title"`
	Author        string  `json:"author"`
	Description   string  `json:"description"`
	Genre         string  `json:"genre"`
	Language      string  `json:"language"`
	CoverURL      string  `json:"cover_url"`
	ISBN          string  `json:"isbn"`
	Publisher     string  `json:"publisher"`
	PublishedDate string  `json:"published_date"`
	PageCount     int     `json:"page_count"`
	Rating        float64 `json:"rating"`
	RatingCount   int64   `json:"rating_count"`
	ReadCount     int64   `json:"read_count"`
}

// BookListData 图书列表响应数据
type BookListData struct {
	Items      []BookData `json:"items"`
	Pagination struct {
		Total      int64 `json:"total"`
		Page       int   `json:"page"`
		Limit      int   `json:"limit"`
		TotalPages int   `json:"total_pages"`
	} `json:"pagination"`
}

// ReadData 阅读计数响应数据
type ReadData struct {
	BookID    uint  `json:"book_id"`
	ReadCount int64 `json:"read_count"`
}

// RatingData 评分响应数据
type RatingData struct {
	BookID      uint    `json:"book_id"`
	Rating      float64 `json:"rating"`
	RatingCount int64   `json:"rating_count"`
}

// RequireServer 检查服务是否可用，不可用时跳过测试
//
// 集成测试需要真实的服务和数据库，在CI单测阶段
// 这些依赖通常不存在，跳过而非失败。
func RequireServer(t *testing.T) {
	t.Helper()

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(PingURL)
	if err != nil {
		t.Skipf("服务不可用，跳过集成测试: %v", err)
	}
	resp.Body.Close()
}

// doJSON 发送HTTP请求并解析统一响应
func doJSON(t *testing.T, method, url string, data interface{}, token string) *Response {
	t.Helper()

	var body io.Reader
	if data != nil {
		jsonData, err := json.Marshal(data)
		require.NoError(t, err, "JSON序列化失败")
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err, "创建HTTP请求失败")

	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: Timeout}
	resp, err := client.Do(req)
	require.NoError(t, err, "发送HTTP请求失败")
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "读取响应体失败")

	var result Response
	err = json.Unmarshal(raw, &result)
	require.NoError(t, err, "解析JSON响应失败: %s", string(raw))

	return &result
}

// PostJSON 发送POST请求并解析JSON响应
func PostJSON(t *testing.T, url string, data interface{}, token string) *Response {
	return doJSON(t, http.MethodPost, url, data, token)
}

// PutJSON 发送PUT请求并解析JSON响应
func PutJSON(t *testing.T, url string, data interface{}, token string) *Response {
	return doJSON(t, http.MethodPut, url, data, token)
}

// GetJSON 发送GET请求并解析JSON响应
func GetJSON(t *testing.T, url string, token string) *Response {
	return doJSON(t, http.MethodGet, url, nil, token)
}

// DeleteJSON 发送DELETE请求并解析JSON响应
func DeleteJSON(t *testing.T, url string, token string) *Response {
	return doJSON(t, http.MethodDelete, url, nil, token)
}

// GenerateTestEmail 生成唯一的测试邮箱
//
// 使用纳秒时间戳确保邮箱唯一性，避免测试重复运行时邮箱冲突
func GenerateTestEmail(prefix string) string {
	return fmt.Sprintf("%s_%d@test.com", prefix, time.Now().UnixNano())
}

// RegisterTestUser 注册测试用户并返回Token
//
// 注册接口直接返回Token对，不需要再登录一次
func RegisterTestUser(t *testing.T, nickname string) (email string, token string) {
	t.Helper()

	email = GenerateTestEmail(nickname)
	registerReq := map[string]string{
		"email":    email,
		"password": "Test1234",
		"nickname": nickname,
	}

	resp := PostJSON(t, BaseURL+"/users/register", registerReq, "")
	require.Equal(t, 0, resp.Code, "注册失败: %s", resp.Message)

	var auth AuthData
	err := json.Unmarshal(resp.Data, &auth)
	require.NoError(t, err, "解析注册响应失败")
	require.NotEmpty(t, auth.AccessToken, "注册应该返回access_token")

	return email, auth.AccessToken
}

// AdminToken 获取管理员Token
//
// 图书写操作只有管理员能执行，而注册接口只会创建普通用户。
// 管理员账号需要预先在数据库中准备好，通过环境变量传入：
//
//	BOOKDISCOVERY_TEST_ADMIN_EMAIL / BOOKDISCOVERY_TEST_ADMIN_PASSWORD
//
// 未配置时跳过依赖管理员的测试。
func AdminToken(t *testing.T) string {
	t.Helper()

	adminEmail := os.Getenv("BOOKDISCOVERY_TEST_ADMIN_EMAIL")
	adminPassword := os.Getenv("BOOKDISCOVERY_TEST_ADMIN_PASSWORD")
	if adminEmail == "" || adminPassword == "" {
		t.Skip("未配置管理员测试账号，跳过")
	}

	loginReq := map[string]string{
		"email":    adminEmail,
		"password": adminPassword,
	}

	resp := PostJSON(t, BaseURL+"/users/login", loginReq, "")
	require.Equal(t, 0, resp.Code, "管理员登录失败: %s", resp.Message)

	var auth AuthData
	err := json.Unmarshal(resp.Data, &auth)
	require.NoError(t, err, "解析登录响应失败")
	require.Equal(t, "admin", auth.User.Role, "测试账号必须是管理员")

	return auth.AccessToken
}

// fmtBookURL 拼接图书详情URL
func fmtBookURL(id uint) string {
	return fmt.Sprintf("%s/books/%d", BaseURL, id)
}

// mustAnyBookID 从列表接口取一本已有图书的ID
//
// 阅读/评分测试只需要任意一本存在的图书。库里一本都没有
// 且没有管理员账号时无法继续，跳过。
func mustAnyBookID(t *testing.T) uint {
	t.Helper()

	resp := GetJSON(t, BaseURL+"/books?limit=1", "")
	require.Equal(t, 0, resp.Code, "查询图书列表失败: %s", resp.Message)

	var list BookListData
	err := json.Unmarshal(resp.Data, &list)
	require.NoError(t, err, "解析列表响应失败")

	if len(list.Items) > 0 {
		return list.Items[0].ID
	}

	adminEmail := os.Getenv("BOOKDISCOVERY_TEST_ADMIN_EMAIL")
	if adminEmail == "" {
		t.Skip("库中没有图书且未配置管理员账号，跳过")
	}
	return CreateTestBook(t, AdminToken(t), "《测试图书》", "Fiction")
}

// CreateTestBook 创建测试图书并返回图书ID
func CreateTestBook(t *testing.T, adminToken string, title string, genre string) uint {
	t.Helper()

	bookReq := map[string]interface{}{
		"title":       title,
		"author":      "集成测试作者",
		"genre":       genre,
		"description": "集成测试用图书",
		"page_count":  320,
	}

	resp := PostJSON(t, BaseURL+"/books", bookReq, adminToken)
	require.Equal(t, 0, resp.Code, "创建图书失败: %s", resp.Message)

	var data BookData
	err := json.Unmarshal(resp.Data, &data)
	require.NoError(t, err, "解析图书响应失败")
	require.NotZero(t, data.ID, "图书ID应该大于0")

	return data.ID
}
