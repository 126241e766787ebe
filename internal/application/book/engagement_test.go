package book

import (
	"context"
	"sync"
	"testing"

	"github.com/Nestly-dev/bookdiscovery/internal/domain/book"
)

// TestRecordRating_Sequence 测试依次评5、3、4分
// 期望:rating_count=3, rating=4.0
func TestRecordRating_Sequence(t *testing.T) {
	create, _, _, rate := newTestUseCases(newMemRepo())
	ctx := context.Background()

	resp, err := create.Execute(ctx, CreateBookRequest{
		BookAttributes: BookAttributes{Title: "T", Author: "A", Genre: "Fiction"},
		CreatedByID:    1,
	})
	if err != nil {
		t.Fatalf("创建图书失败: %v", err)
	}

	var last *RecordRatingResponse
	for _, r := range []float64{5, 3, 4} {
		last, err = rate.Execute(ctx, resp.ID, 1, r)
		if err != nil {
			t.Fatalf("评分失败: %v", err)
		}
	}

	if last.RatingCount != 3 {
		t.Errorf("期望评分人数3，实际%d", last.RatingCount)
	}
	if last.Rating != 4.0 {
		t.Errorf("期望均分4.0，实际%v", last.Rating)
	}
}

// TestRecordRating_Boundary 测试评分边界值
func TestRecordRating_Boundary(t *testing.T) {
	create, _, _, rate := newTestUseCases(newMemRepo())
	ctx := context.Background()

	resp, _ := create.Execute(ctx, CreateBookRequest{
		BookAttributes: BookAttributes{Title: "T", Author: "A", Genre: "Fiction"},
		CreatedByID:    1,
	})

	// 0与5.01超出范围
	if _, err := rate.Execute(ctx, resp.ID, 1, 0); err != book.ErrInvalidRating {
		t.Errorf("评分0期望ErrInvalidRating，实际%v", err)
	}
	if _, err := rate.Execute(ctx, resp.ID, 1, 5.01); err != book.ErrInvalidRating {
		t.Errorf("评分5.01期望ErrInvalidRating，实际%v", err)
	}

	// 不存在的图书
	if _, err := rate.Execute(ctx, 999, 1, 4); err != book.ErrBookNotFound {
		t.Errorf("期望ErrBookNotFound，实际%v", err)
	}
}

// TestRecordRead_Twice 测试标记已读两次
func TestRecordRead_Twice(t *testing.T) {
	create, _, read, _ := newTestUseCases(newMemRepo())
	ctx := context.Background()

	resp, _ := create.Execute(ctx, CreateBookRequest{
		BookAttributes: BookAttributes{Title: "T", Author: "A", Genre: "Fiction"},
		CreatedByID:    1,
	})

	if _, err := read.Execute(ctx, resp.ID, 1); err != nil {
		t.Fatalf("标记已读失败: %v", err)
	}
	r2, err := read.Execute(ctx, resp.ID, 2)
	if err != nil {
		t.Fatalf("标记已读失败: %v", err)
	}
	if r2.ReadCount != 2 {
		t.Errorf("期望已读次数2，实际%d", r2.ReadCount)
	}

	// 不存在的图书
	if _, err := read.Execute(ctx, 999, 1); err != book.ErrBookNotFound {
		t.Errorf("期望ErrBookNotFound，实际%v", err)
	}
}

// TestRecordEngagement_Concurrent 测试并发互动不丢失更新
func TestRecordEngagement_Concurrent(t *testing.T) {
	repo := newMemRepo()
	create, _, read, rate := newTestUseCases(repo)
	ctx := context.Background()

	resp, _ := create.Execute(ctx, CreateBookRequest{
		BookAttributes: BookAttributes{Title: "T", Author: "A", Genre: "Fiction"},
		CreatedByID:    1,
	})

	const n = 40
	var wg sync.WaitGroup
	wg.Add(n * 2)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			if _, err := read.Execute(ctx, resp.ID, 1); err != nil {
				t.Errorf("标记已读失败: %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			if _, err := rate.Execute(ctx, resp.ID, 1, 3); err != nil {
				t.Errorf("评分失败: %v", err)
			}
		}()
	}
	wg.Wait()

	b, err := repo.FindByID(ctx, resp.ID)
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if b.ReadCount != n {
		t.Errorf("期望已读次数%d，实际%d", n, b.ReadCount)
	}
	if b.RatingCount != n {
		t.Errorf("期望评分人数%d，实际%d", n, b.RatingCount)
	}
	// 全部评3分,均分必为3.0
	if b.Rating != 3.0 {
		t.Errorf("期望均分3.0，实际%v", b.Rating)
	}
}
