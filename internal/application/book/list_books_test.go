package book

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Nestly-dev/bookdiscovery/internal/domain/book"
	apperrors "github.com/Nestly-dev/bookdiscovery/pkg/errors"
	"github.com/Nestly-dev/bookdiscovery/pkg/mq"
)

// memRepo 内存仓储,实现完整的过滤/排序/分页语义,
// 供应用层用例测试使用
type memRepo struct {
	mu     sync.Mutex
	nextID uint
	books  map[uint]*book.Book
}

func newMemRepo() *memRepo {
	return &memRepo{nextID: 1, books: make(map[uint]*book.Book)}
}

func (r *memRepo) Create(_ context.Context, b *book.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b.ID = r.nextID
	r.nextID++
	cp := *b
	r.books[b.ID] = &cp
	return nil
}

func (r *memRepo) FindByID(_ context.Context, id uint) (*book.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.books[id]
	if !ok {
		return nil, book.ErrBookNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *memRepo) Update(_ context.Context, b *book.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.books[b.ID]; !ok {
		return book.ErrBookNotFound
	}
	cp := *b
	r.books[b.ID] = &cp
	return nil
}

func (r *memRepo) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.books[id]; !ok {
		return book.ErrBookNotFound
	}
	delete(r.books, id)
	return nil
}

func (r *memRepo) IncrementReadCount(_ context.Context, id uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.books[id]
	if !ok {
		return 0, book.ErrBookNotFound
	}
	b.ReadCount++
	return b.ReadCount, nil
}

func (r *memRepo) ApplyRating(_ context.Context, id uint, rating float64) (float64, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.books[id]
	if !ok {
		return 0, 0, book.ErrBookNotFound
	}
	b.Rating = book.NextRating(b.Rating, b.RatingCount, rating)
	b.RatingCount++
	return b.Rating, b.RatingCount, nil
}

// List 过滤→排序(含id升序决胜)→分页
func (r *memRepo) List(_ context.Context, p book.ListParams) ([]*book.Book, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	matched := make([]*book.Book, 0)
	for _, b := range r.books {
		if !matches(b, p) {
			continue
		}
		cp := *b
		matched = append(matched, &cp)
	}

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		less, equal := compareBooks(a, b, p.SortBy)
		if equal {
			return a.ID < b.ID
		}
		if p.SortOrder == "asc" {
			return less
		}
		return !less
	})

	total := int64(len(matched))
	start := p.Offset()
	if start >= len(matched) {
		return []*book.Book{}, total, nil
	}
	end := start + p.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func matches(b *book.Book, p book.ListParams) bool {
	if p.Search != "" {
		s := strings.ToLower(p.Search)
		if !strings.Contains(strings.ToLower(b.Title), s) &&
			!strings.Contains(strings.ToLower(b.Author), s) &&
			!strings.Contains(strings.ToLower(b.Description), s) {
			return false
		}
	}
	if p.Genre != "" && b.Genre != p.Genre {
		return false
	}
	if p.Author != "" && !strings.Contains(strings.ToLower(b.Author), strings.ToLower(p.Author)) {
		return false
	}
	if b.Rating < p.MinRating {
		return false
	}
	if p.PublishedFrom != nil && (b.PublishedDate == nil || b.PublishedDate.Before(*p.PublishedFrom)) {
		return false
	}
	if p.PublishedTo != nil && (b.PublishedDate == nil || b.PublishedDate.After(*p.PublishedTo)) {
		return false
	}
	return true
}

func compareBooks(a, b *book.Book, sortBy string) (less, equal bool) {
	switch sortBy {
	case "title":
		return a.Title < b.Title, a.Title == b.Title
	case "rating":
		return a.Rating < b.Rating, a.Rating == b.Rating
	case "read_count":
		return a.ReadCount < b.ReadCount, a.ReadCount == b.ReadCount
	case "published_date":
		at, bt := time.Time{}, time.Time{}
		if a.PublishedDate != nil {
			at = *a.PublishedDate
		}
		if b.PublishedDate != nil {
			bt = *b.PublishedDate
		}
		return at.Before(bt), at.Equal(bt)
	default: // created_at
		return a.CreatedAt.Before(b.CreatedAt), a.CreatedAt.Equal(b.CreatedAt)
	}
}

// newTestUseCases 组装用例(空缓存+空MQ)
func newTestUseCases(repo book.Repository) (*CreateBookUseCase, *ListBooksUseCase, *RecordReadUseCase, *RecordRatingUseCase) {
	svc := book.NewService(repo)
	cache := NewNoopCache()
	pub := mq.NoopPublisher{}
	return NewCreateBookUseCase(svc, cache, pub),
		NewListBooksUseCase(svc, cache),
		NewRecordReadUseCase(svc, cache, pub),
		NewRecordRatingUseCase(svc, cache, pub)
}

// seedBooks 写入n本测试图书,分类在Fiction/History间交替
func seedBooks(t *testing.T, create *CreateBookUseCase, n int) {
	t.Helper()
	genres := []string{"Fiction", "History"}
	for i := 0; i < n; i++ {
		req := CreateBookRequest{
			BookAttributes: BookAttributes{
				Title:         fmt.Sprintf("Book %03d", i),
				Author:        fmt.Sprintf("Author %d", i%5),
				Genre:         genres[i%2],
				PublishedDate: fmt.Sprintf("20%02d-01-15", i%20),
			},
			CreatedByID: 1,
		}
		if _, err := create.Execute(context.Background(), req); err != nil {
			t.Fatalf("写入测试数据失败: %v", err)
		}
	}
}

// TestListBooks_Defaults 测试分页默认值与钳制
func TestListBooks_Defaults(t *testing.T) {
	create, list, _, _ := newTestUseCases(newMemRepo())
	seedBooks(t, create, 30)
	ctx := context.Background()

	// 默认page=1, limit=12
	resp, err := list.Execute(ctx, ListBooksRequest{})
	if err != nil {
		t.Fatalf("列表查询失败: %v", err)
	}
	if len(resp.Items) != DefaultLimit {
		t.Errorf("期望默认每页%d条，实际%d条", DefaultLimit, len(resp.Items))
	}
	if resp.Pagination.Page != 1 || resp.Pagination.Limit != DefaultLimit {
		t.Errorf("分页信息错误: %+v", resp.Pagination)
	}
	if resp.Pagination.Total != 30 || resp.Pagination.TotalPages != 3 {
		t.Errorf("期望total=30 totalPages=3，实际%+v", resp.Pagination)
	}

	// limit超上限钳制为50而非报错
	resp, err = list.Execute(ctx, ListBooksRequest{Limit: 500})
	if err != nil {
		t.Fatalf("列表查询失败: %v", err)
	}
	if resp.Pagination.Limit != MaxLimit {
		t.Errorf("期望limit钳制为%d，实际%d", MaxLimit, resp.Pagination.Limit)
	}

	// 非法page/limit(接口层解析失败传0)回退默认值
	resp, err = list.Execute(ctx, ListBooksRequest{Page: -3, Limit: 0})
	if err != nil {
		t.Fatalf("列表查询失败: %v", err)
	}
	if resp.Pagination.Page != 1 || resp.Pagination.Limit != DefaultLimit {
		t.Errorf("期望回退默认分页，实际%+v", resp.Pagination)
	}
}

// TestListBooks_PageBeyondLast 测试超出末页返回空列表而非错误
func TestListBooks_PageBeyondLast(t *testing.T) {
	create, list, _, _ := newTestUseCases(newMemRepo())
	seedBooks(t, create, 5)

	resp, err := list.Execute(context.Background(), ListBooksRequest{Page: 99})
	if err != nil {
		t.Fatalf("列表查询失败: %v", err)
	}
	if len(resp.Items) != 0 {
		t.Errorf("期望空列表，实际%d条", len(resp.Items))
	}
	if resp.Pagination.Total != 5 || resp.Pagination.TotalPages != 1 {
		t.Errorf("total/totalPages应保持正确: %+v", resp.Pagination)
	}
}

// TestListBooks_PaginationComplete 测试遍历所有页不重不漏
func TestListBooks_PaginationComplete(t *testing.T) {
	create, list, _, _ := newTestUseCases(newMemRepo())
	seedBooks(t, create, 47)
	ctx := context.Background()

	seen := make(map[uint]bool)
	var collected int64
	for page := 1; ; page++ {
		resp, err := list.Execute(ctx, ListBooksRequest{Page: page, Limit: 10, SortBy: "title", SortOrder: "asc"})
		if err != nil {
			t.Fatalf("第%d页查询失败: %v", page, err)
		}
		if len(resp.Items) == 0 {
			break
		}
		for _, item := range resp.Items {
			if seen[item.ID] {
				t.Errorf("图书%d出现在多个页中", item.ID)
			}
			seen[item.ID] = true
		}
		collected += int64(len(resp.Items))
		if page > resp.Pagination.TotalPages {
			t.Fatal("翻页超出totalPages仍返回数据")
		}
	}

	if collected != 47 {
		t.Errorf("期望累计47条，实际%d条", collected)
	}
}

// TestListBooks_FilterSoundness 测试过滤结果全部满足谓词
func TestListBooks_FilterSoundness(t *testing.T) {
	create, list, _, rate := newTestUseCases(newMemRepo())
	seedBooks(t, create, 20)
	ctx := context.Background()

	// 给部分图书评分,让min_rating过滤有区分度
	for id := uint(1); id <= 10; id++ {
		if _, err := rate.Execute(ctx, id, 1, float64(1+id%5)); err != nil {
			t.Fatalf("评分失败: %v", err)
		}
	}

	resp, err := list.Execute(ctx, ListBooksRequest{
		Genre:        "Fiction",
		MinRating:    3,
		HasMinRating: true,
		Limit:        50,
	})
	if err != nil {
		t.Fatalf("过滤查询失败: %v", err)
	}
	for _, item := range resp.Items {
		if item.Genre != "Fiction" {
			t.Errorf("图书%d分类%s不满足过滤条件", item.ID, item.Genre)
		}
		if item.Rating < 3 {
			t.Errorf("图书%d评分%v低于min_rating", item.ID, item.Rating)
		}
	}

	// 搜索:标题不区分大小写子串匹配
	resp, err = list.Execute(ctx, ListBooksRequest{Search: "book 00", Limit: 50})
	if err != nil {
		t.Fatalf("搜索失败: %v", err)
	}
	if len(resp.Items) != 10 {
		t.Errorf("期望匹配10条(Book 000-009)，实际%d条", len(resp.Items))
	}
}

// TestListBooks_InvalidGenre 测试非法分类返回校验错误
func TestListBooks_InvalidGenre(t *testing.T) {
	create, list, _, _ := newTestUseCases(newMemRepo())
	seedBooks(t, create, 3)

	_, err := list.Execute(context.Background(), ListBooksRequest{Genre: "Cooking"})
	if err == nil {
		t.Fatal("期望校验错误")
	}
	appErr := apperrors.GetAppError(err)
	if appErr.Code != apperrors.ErrCodeInvalidGenre {
		t.Errorf("期望错误码%d，实际%d", apperrors.ErrCodeInvalidGenre, appErr.Code)
	}
	if !strings.Contains(appErr.Message, "genre") {
		t.Errorf("错误信息应指明字段: %s", appErr.Message)
	}
}

// TestListBooks_TieBreakDeterministic 测试相同排序值按id升序稳定排序
func TestListBooks_TieBreakDeterministic(t *testing.T) {
	repo := newMemRepo()
	create, list, _, _ := newTestUseCases(repo)
	ctx := context.Background()

	// 5本同名图书,title排序时全部打平
	for i := 0; i < 5; i++ {
		req := CreateBookRequest{
			BookAttributes: BookAttributes{Title: "Same Title", Author: "A", Genre: "Fiction"},
			CreatedByID:    1,
		}
		if _, err := create.Execute(ctx, req); err != nil {
			t.Fatalf("写入失败: %v", err)
		}
	}

	for run := 0; run < 3; run++ {
		resp, err := list.Execute(ctx, ListBooksRequest{SortBy: "title", SortOrder: "desc", Limit: 50})
		if err != nil {
			t.Fatalf("查询失败: %v", err)
		}
		for i := 1; i < len(resp.Items); i++ {
			if resp.Items[i].ID <= resp.Items[i-1].ID {
				t.Fatalf("打平时应按id升序: %d在%d之后", resp.Items[i].ID, resp.Items[i-1].ID)
			}
		}
	}
}

// TestListBooks_SortByRatingDesc 测试按评分降序排序
func TestListBooks_SortByRatingDesc(t *testing.T) {
	create, list, _, rate := newTestUseCases(newMemRepo())
	seedBooks(t, create, 6)
	ctx := context.Background()

	for i, r := range []float64{2, 5, 3, 1, 4, 3} {
		if _, err := rate.Execute(ctx, uint(i+1), 1, r); err != nil {
			t.Fatalf("评分失败: %v", err)
		}
	}

	resp, err := list.Execute(ctx, ListBooksRequest{SortBy: "rating", SortOrder: "desc", Limit: 50})
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	for i := 1; i < len(resp.Items); i++ {
		prev, cur := resp.Items[i-1], resp.Items[i]
		if cur.Rating > prev.Rating {
			t.Errorf("评分应降序: %v在%v之后", cur.Rating, prev.Rating)
		}
		if cur.Rating == prev.Rating && cur.ID <= prev.ID {
			t.Errorf("相同评分应按id升序")
		}
	}
}
