package index

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"time"

	"github.com/CapYuno/Book-Share-App/core"
	"github.com/CapYuno/Book-Share-App/model"
)

// snapshot 是 FittedIndex 的序列化形态。
// 两种策略的已拟合状态各占一个具体指针字段，避免 gob 的接口注册开销；
// 新增策略时在这里加一个字段并更新两端编解码。
type snapshot struct {
	BookIDs  []int64
	FittedAt time.Time
	Strategy string
	Vector   *model.FittedVector
	Keyword  *model.FittedKeyword
}

// EncodeSnapshot 把快照编码为 gob 字节流。
// 往返保证：解码结果的 ID 顺序与全部分数和原快照逐位一致。
func (x *FittedIndex) EncodeSnapshot() ([]byte, error) {
	snap := snapshot{
		BookIDs:  x.BookIDs,
		FittedAt: x.FittedAt,
		Strategy: x.Fitted.Strategy(),
	}
	switch fitted := x.Fitted.(type) {
	case *model.FittedVector:
		snap.Vector = fitted
	case *model.FittedKeyword:
		snap.Keyword = fitted
	default:
		return nil, core.ErrCachePersistence(core.ModuleIndex,
			fmt.Sprintf("cannot encode snapshot for strategy %q", snap.Strategy))
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&snap); err != nil {
		return nil, core.ErrCachePersistence(core.ModuleIndex,
			fmt.Sprintf("encode snapshot: %v", err))
	}
	return buf.Bytes(), nil
}

// DecodeSnapshot 从 gob 字节流还原快照。
// 任何损坏/不完整的数据都归为 CACHE_PERSISTENCE，由上层触发内存重建。
func DecodeSnapshot(data []byte) (*FittedIndex, error) {
	var snap snapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&snap); err != nil {
		return nil, core.ErrCachePersistence(core.ModuleIndex,
			fmt.Sprintf("decode snapshot: %v", err))
	}

	var fitted model.Fitted
	switch {
	case snap.Vector != nil:
		fitted = snap.Vector
	case snap.Keyword != nil:
		fitted = snap.Keyword
	default:
		return nil, core.ErrCachePersistence(core.ModuleIndex,
			"snapshot carries no fitted model")
	}
	if fitted.Len() != len(snap.BookIDs) {
		return nil, core.ErrCachePersistence(core.ModuleIndex,
			fmt.Sprintf("snapshot inconsistent: %d ids vs %d fitted items",
				len(snap.BookIDs), fitted.Len()))
	}

	idx := &FittedIndex{
		BookIDs:  snap.BookIDs,
		Fitted:   fitted,
		FittedAt: snap.FittedAt,
	}
	idx.buildPos()
	return idx, nil
}
