package integration

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 用户模块集成测试
//
// 测试场景覆盖：
// 1. 注册（直接返回Token对）
// 2. 参数校验（邮箱格式、密码强度、昵称长度）
// 3. 登录/登出
// 4. 登出后Token失效
//
// 运行方式：
//   go test -v ./test/integration/...   # 需要先启动服务和依赖

// TestUserRegister 测试用户注册功能
func TestUserRegister(t *testing.T) {
	RequireServer(t)

	t.Run("正常注册", func(t *testing.T) {
		email := GenerateTestEmail("normal_user")
		registerReq := map[string]string{
			"email":    email,
			"password": "Test1234",
			"nickname": "测试用户",
		}

		resp := PostJSON(t, BaseURL+"/users/register", registerReq, "")
		assert.Equal(t, 0, resp.Code, "注册应该成功")

		var auth AuthData
		err := json.Unmarshal(resp.Data, &auth)
		require.NoError(t, err, "解析响应数据失败")

		assert.NotZero(t, auth.User.ID, "用户ID应该大于0")
		assert.Equal(t, email, auth.User.Email, "返回的邮箱应该与请求一致")
		assert.Equal(t, "user", auth.User.Role, "新注册用户角色应该是user")
		assert.NotEmpty(t, auth.AccessToken, "注册应该直接返回access_token")
		assert.NotEmpty(t, auth.RefreshToken, "注册应该直接返回refresh_token")

		t.Logf("✓ 注册成功，用户ID: %d", auth.User.ID)
	})

	t.Run("重复邮箱注册应失败", func(t *testing.T) {
		email := GenerateTestEmail("duplicate_user")
		registerReq := map[string]string{
			"email":    email,
			"password": "Test1234",
			"nickname": "测试用户1",
		}

		resp1 := PostJSON(t, BaseURL+"/users/register", registerReq, "")
		require.Equal(t, 0, resp1.Code, "第一次注册应该成功")

		registerReq["nickname"] = "测试用户2"
		resp2 := PostJSON(t, BaseURL+"/users/register", registerReq, "")

		assert.NotEqual(t, 0, resp2.Code, "重复邮箱注册应该失败")
		assert.Contains(t, resp2.Message, "邮箱", "错误信息应该提示邮箱相关")

		t.Logf("✓ 重复邮箱注册正确返回错误: %s", resp2.Message)
	})

	t.Run("参数校验", func(t *testing.T) {
		cases := []struct {
			name     string
			email    string
			password string
			nickname string
		}{
			{"邮箱格式错误", "not-an-email", "Test1234", "测试用户"},
			{"密码太短", GenerateTestEmail("short_pwd"), "Ab1", "测试用户"},
			{"密码缺少数字", GenerateTestEmail("no_digit"), "Abcdefgh", "测试用户"},
			{"密码缺少字母", GenerateTestEmail("no_letter"), "12345678", "测试用户"},
			{"昵称太短", GenerateTestEmail("short_nick"), "Test1234", "a"},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				registerReq := map[string]string{
					"email":    tc.email,
					"password": tc.password,
					"nickname": tc.nickname,
				}

				resp := PostJSON(t, BaseURL+"/users/register", registerReq, "")
				assert.NotEqual(t, 0, resp.Code, "非法参数应该被拒绝")

				t.Logf("✓ %s 正确被拒绝: %s", tc.name, resp.Message)
			})
		}
	})
}

// TestUserLogin 测试用户登录功能
func TestUserLogin(t *testing.T) {
	RequireServer(t)

	email, _ := RegisterTestUser(t, "login_user")

	t.Run("正常登录", func(t *testing.T) {
		loginReq := map[string]string{
			"email":    email,
			"password": "Test1234",
		}

		resp := PostJSON(t, BaseURL+"/users/login", loginReq, "")
		assert.Equal(t, 0, resp.Code, "登录应该成功")

		var auth AuthData
		err := json.Unmarshal(resp.Data, &auth)
		require.NoError(t, err, "解析登录响应失败")
		assert.NotEmpty(t, auth.AccessToken, "应该返回access_token")

		t.Logf("✓ 登录成功")
	})

	t.Run("密码错误应失败", func(t *testing.T) {
		loginReq := map[string]string{
			"email":    email,
			"password": "Wrong1234",
		}

		resp := PostJSON(t, BaseURL+"/users/login", loginReq, "")
		assert.NotEqual(t, 0, resp.Code, "错误密码应该失败")

		t.Logf("✓ 错误密码正确被拒绝: %s", resp.Message)
	})

	t.Run("不存在的邮箱应失败", func(t *testing.T) {
		loginReq := map[string]string{
			"email":    GenerateTestEmail("no_such_user"),
			"password": "Test1234",
		}

		resp := PostJSON(t, BaseURL+"/users/login", loginReq, "")
		assert.NotEqual(t, 0, resp.Code, "不存在的邮箱应该失败")

		t.Logf("✓ 不存在的邮箱正确被拒绝: %s", resp.Message)
	})
}

// TestTokenRefresh 测试Refresh Token换取新Access Token
func TestTokenRefresh(t *testing.T) {
	RequireServer(t)

	registerReq := map[string]string{
		"email":    GenerateTestEmail("refresh_user"),
		"password": "Test1234",
		"nickname": "refresh_user",
	}
	resp := PostJSON(t, BaseURL+"/users/register", registerReq, "")
	require.Equal(t, 0, resp.Code, "注册失败: %s", resp.Message)

	var auth AuthData
	require.NoError(t, json.Unmarshal(resp.Data, &auth), "解析注册响应失败")
	require.NotEmpty(t, auth.RefreshToken, "应该返回refresh_token")

	t.Run("正常刷新", func(t *testing.T) {
		refreshResp := PostJSON(t, BaseURL+"/users/refresh",
			map[string]string{"refresh_token": auth.RefreshToken}, "")
		require.Equal(t, 0, refreshResp.Code, "刷新应该成功: %s", refreshResp.Message)

		var data struct {
			AccessToken string `json:"access_token"`
			ExpiresIn   int64  `json:"expires_in"`
		}
		require.NoError(t, json.Unmarshal(refreshResp.Data, &data), "解析刷新响应失败")
		require.NotEmpty(t, data.AccessToken, "应该返回新的access_token")

		// 新Token可以访问需要认证的接口
		bookID := mustAnyBookID(t)
		readResp := PostJSON(t, fmtBookURL(bookID)+"/read", nil, data.AccessToken)
		assert.Equal(t, 0, readResp.Code, "新Token应该可用: %s", readResp.Message)

		t.Logf("✓ 刷新成功，新Token可用")
	})

	t.Run("非法RefreshToken应失败", func(t *testing.T) {
		refreshResp := PostJSON(t, BaseURL+"/users/refresh",
			map[string]string{"refresh_token": "not-a-token"}, "")
		assert.NotEqual(t, 0, refreshResp.Code, "非法Token应该失败")

		t.Logf("✓ 非法Token正确被拒绝: %s", refreshResp.Message)
	})
}

// TestUserLogout 测试登出后Token失效
func TestUserLogout(t *testing.T) {
	RequireServer(t)

	_, token := RegisterTestUser(t, "logout_user")

	// 登出前Token可用（用需要认证的接口验证）
	bookID := mustAnyBookID(t)
	readBefore := PostJSON(t, fmtBookURL(bookID)+"/read", nil, token)
	require.Equal(t, 0, readBefore.Code, "登出前Token应该可用: %s", readBefore.Message)

	// 登出
	logoutResp := PostJSON(t, BaseURL+"/users/logout", nil, token)
	assert.Equal(t, 0, logoutResp.Code, "登出应该成功")

	// 登出后同一个Token应该被拒绝
	readAfter := PostJSON(t, fmtBookURL(bookID)+"/read", nil, token)
	assert.NotEqual(t, 0, readAfter.Code, "登出后Token应该失效")

	t.Logf("✓ 登出后Token正确失效: %s", readAfter.Message)
}
