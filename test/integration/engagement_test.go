package integration

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 互动模块集成测试
//
// 测试场景覆盖：
// 1. 阅读计数（需要认证，精确+1）
// 2. 评分（增量均值、保留1位小数）
// 3. 评分范围校验
// 4. 并发打点不丢计数

// TestRecordRead 测试阅读计数
func TestRecordRead(t *testing.T) {
	RequireServer(t)
	adminToken := AdminToken(t)

	_, userToken := RegisterTestUser(t, "read_user")
	bookID := CreateTestBook(t, adminToken, "《阅读计数测试》", "History")

	t.Run("未登录不能打点", func(t *testing.T) {
		resp := PostJSON(t, fmtBookURL(bookID)+"/read", nil, "")
		assert.NotEqual(t, 0, resp.Code, "未登录应该失败")

		t.Logf("✓ 未登录正确被拒绝: %s", resp.Message)
	})

	t.Run("连续打点计数递增", func(t *testing.T) {
		var last int64
		for i := 1; i <= 3; i++ {
			resp := PostJSON(t, fmtBookURL(bookID)+"/read", nil, userToken)
			require.Equal(t, 0, resp.Code, "阅读打点失败: %s", resp.Message)

			var data ReadData
			err := json.Unmarshal(resp.Data, &data)
			require.NoError(t, err, "解析响应数据失败")

			assert.Equal(t, int64(i), data.ReadCount, "第%d次打点计数应该是%d", i, i)
			last = data.ReadCount
		}

		t.Logf("✓ 连续打点计数正确: %d", last)
	})

	t.Run("不存在的图书应404", func(t *testing.T) {
		resp := PostJSON(t, BaseURL+"/books/99999999/read", nil, userToken)
		assert.NotEqual(t, 0, resp.Code, "不存在的图书应该失败")

		t.Logf("✓ 不存在的图书正确返回错误: %s", resp.Message)
	})
}

// TestRecordRating 测试评分功能
func TestRecordRating(t *testing.T) {
	RequireServer(t)
	adminToken := AdminToken(t)

	_, userToken := RegisterTestUser(t, "rating_user")

	t.Run("增量均值计算", func(t *testing.T) {
		bookID := CreateTestBook(t, adminToken, "《评分均值测试》", "Poetry")

		// 依次评 5、3、4，均值应该是 5.0 → 4.0 → 4.0
		steps := []struct {
			rating    float64
			wantMean  float64
			wantCount int64
		}{
			{5, 5.0, 1},
			{3, 4.0, 2},
			{4, 4.0, 3},
		}

		for _, s := range steps {
			resp := PostJSON(t, fmtBookURL(bookID)+"/rating",
				map[string]float64{"rating": s.rating}, userToken)
			require.Equal(t, 0, resp.Code, "评分失败: %s", resp.Message)

			var data RatingData
			err := json.Unmarshal(resp.Data, &data)
			require.NoError(t, err, "解析响应数据失败")

			assert.InDelta(t, s.wantMean, data.Rating, 0.001, "评分均值不符")
			assert.Equal(t, s.wantCount, data.RatingCount, "评分次数不符")
		}

		t.Logf("✓ 增量均值计算正确")
	})

	t.Run("保留1位小数", func(t *testing.T) {
		bookID := CreateTestBook(t, adminToken, "《评分舍入测试》", "Travel")

		// 5 和 4：均值 4.5；再评 5：(4.5*2+5)/3 = 4.666... → 4.7
		for _, r := range []float64{5, 4} {
			resp := PostJSON(t, fmtBookURL(bookID)+"/rating",
				map[string]float64{"rating": r}, userToken)
			require.Equal(t, 0, resp.Code, "评分失败: %s", resp.Message)
		}

		resp := PostJSON(t, fmtBookURL(bookID)+"/rating",
			map[string]float64{"rating": 5}, userToken)
		require.Equal(t, 0, resp.Code, "评分失败: %s", resp.Message)

		var data RatingData
		err := json.Unmarshal(resp.Data, &data)
		require.NoError(t, err, "解析响应数据失败")

		assert.InDelta(t, 4.7, data.Rating, 0.001, "均值应该四舍五入到1位小数")

		t.Logf("✓ 舍入正确: %.1f", data.Rating)
	})

	t.Run("评分范围校验", func(t *testing.T) {
		bookID := CreateTestBook(t, adminToken, "《评分范围测试》", "Business")

		for _, r := range []float64{0, 0.5, 5.01, 6, -1} {
			resp := PostJSON(t, fmtBookURL(bookID)+"/rating",
				map[string]float64{"rating": r}, userToken)
			assert.NotEqual(t, 0, resp.Code, "评分%v应该被拒绝", r)
		}

		// 边界值1和5合法
		for _, r := range []float64{1, 5} {
			resp := PostJSON(t, fmtBookURL(bookID)+"/rating",
				map[string]float64{"rating": r}, userToken)
			assert.Equal(t, 0, resp.Code, "评分%v应该成功: %s", r, resp.Message)
		}

		t.Logf("✓ 评分范围校验正确")
	})
}

// TestEngagementConcurrency 测试并发打点不丢计数
func TestEngagementConcurrency(t *testing.T) {
	RequireServer(t)
	adminToken := AdminToken(t)

	_, userToken := RegisterTestUser(t, "concurrent_user")
	bookID := CreateTestBook(t, adminToken, "《并发计数测试》", "Thriller")

	const workers = 20

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp := PostJSON(t, fmtBookURL(bookID)+"/read", nil, userToken)
			assert.Equal(t, 0, resp.Code, "并发阅读打点失败: %s", resp.Message)
		}()
	}
	wg.Wait()

	getResp := GetJSON(t, fmtBookURL(bookID), "")
	require.Equal(t, 0, getResp.Code, "查询图书失败")

	var data BookData
	err := json.Unmarshal(getResp.Data, &data)
	require.NoError(t, err, "解析响应数据失败")

	assert.Equal(t, int64(workers), data.ReadCount, "并发打点不应该丢计数")

	t.Logf("✓ %d个并发打点全部计入", workers)
}
