package idgen

import (
	"strconv"
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	node *snowflake.Node
	mu   sync.Mutex
)

// Init 设置 snowflake 节点号，多实例部署时每个实例应不同
func Init(nodeID int64) error {
	n, err := snowflake.NewNode(nodeID)
	if err != nil {
		return err
	}
	mu.Lock()
	node = n
	mu.Unlock()
	return nil
}

func current() *snowflake.Node {
	mu.Lock()
	defer mu.Unlock()
	if node == nil {
		node, _ = snowflake.NewNode(1)
	}
	return node
}

// GenID 生成全局唯一 ID
func GenID() int64 {
	return current().Generate().Int64()
}

// GenOrderNo 生成支付订单号
func GenOrderNo() string {
	return "DT" + strconv.FormatInt(GenID(), 10)
}
