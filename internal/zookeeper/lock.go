// internal/zookeeper/lock.go
package zookeeper

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-zookeeper/zk"
)

const lockRoot = "/stockpile_locks"

// ErrLockWaitTimeout 表示在限定时间内没有等到锁。
var ErrLockWaitTimeout = errors.New("timeout waiting for zookeeper lock")

// Conn 封装 ZooKeeper 连接。
type Conn struct {
	*zk.Conn
}

// Connect 建立到 ZooKeeper 集群的连接，addrs 为 "host1:2181,host2:2181"。
func Connect(addrs string) (*Conn, error) {
	conn, _, err := zk.Connect(strings.Split(addrs, ","), 10*time.Second)
	if err != nil {
		return nil, err
	}
	return &Conn{Conn: conn}, nil
}

// KeyedLock 是以资源 ID（这里是 SKU）为粒度的分布式互斥锁。
// 经典的临时顺序节点算法：每个竞争者只监听自己前面的节点，
// 唤醒按创建顺序进行，不会惊群。
type KeyedLock struct {
	conn     *Conn
	path     string // /stockpile_locks/<resourceID>
	lockNode string // 成功获取锁后，自己创建的节点路径
}

// NewKeyedLock 为一个资源创建锁实例。父节点不存在时惰性创建。
func NewKeyedLock(conn *Conn, resourceID string) (*KeyedLock, error) {
	if err := ensureNode(conn, lockRoot); err != nil {
		return nil, err
	}
	lockPath := lockRoot + "/" + resourceID
	if err := ensureNode(conn, lockPath); err != nil {
		return nil, err
	}
	return &KeyedLock{conn: conn, path: lockPath}, nil
}

func ensureNode(conn *Conn, path string) error {
	exists, _, err := conn.Exists(path)
	if err != nil {
		return fmt.Errorf("failed to check node %s: %w", path, err)
	}
	if exists {
		return nil
	}
	_, err = conn.Create(path, []byte(""), 0, zk.WorldACL(zk.PermAll))
	if err != nil && err != zk.ErrNodeExists {
		return fmt.Errorf("failed to create node %s: %w", path, err)
	}
	return nil
}

// Lock 尝试获取锁，等待受 ctx 和 wait 共同限制。
// 超过 wait 仍未获取到锁时返回 ErrLockWaitTimeout。
func (l *KeyedLock) Lock(ctx context.Context, wait time.Duration) error {
	nodePath, err := l.conn.CreateProtectedEphemeralSequential(l.path+"/lock-", []byte(""), zk.WorldACL(zk.PermAll))
	if err != nil {
		return fmt.Errorf("failed to create sequential node: %w", err)
	}
	l.lockNode = nodePath

	deadline := time.Now().Add(wait)

	for {
		children, _, err := l.conn.Children(l.path)
		if err != nil {
			l.abandon()
			return fmt.Errorf("failed to get children nodes: %w", err)
		}
		sort.Strings(children)

		myNodeName := strings.TrimPrefix(l.lockNode, l.path+"/")
		if len(children) > 0 && myNodeName == children[0] {
			// 自己是最小节点，拿到锁
			return nil
		}

		// 找到排在自己前面的节点并监听它
		prevNodeIndex := -1
		for i, child := range children {
			if child == myNodeName {
				prevNodeIndex = i - 1
				break
			}
		}
		if prevNodeIndex < 0 {
			l.abandon()
			return errors.New("own lock node missing from children list")
		}
		prevNodePath := l.path + "/" + children[prevNodeIndex]

		exists, _, eventChan, err := l.conn.ExistsW(prevNodePath)
		if err != nil {
			if err == zk.ErrNoNode {
				continue
			}
			l.abandon()
			return fmt.Errorf("failed to watch previous node: %w", err)
		}
		if !exists {
			// 前一个节点在设置 watch 前刚好释放了，重新竞争
			continue
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			l.abandon()
			return ErrLockWaitTimeout
		}

		select {
		case event := <-eventChan:
			if event.Type == zk.EventNodeDeleted {
				continue
			}
		case <-time.After(remaining):
			l.abandon()
			return ErrLockWaitTimeout
		case <-ctx.Done():
			l.abandon()
			return ctx.Err()
		}
	}
}

// Unlock 释放锁。
func (l *KeyedLock) Unlock() error {
	if l.lockNode == "" {
		return errors.New("no lock to unlock")
	}
	err := l.conn.Delete(l.lockNode, -1)
	if err != nil && err != zk.ErrNoNode {
		return fmt.Errorf("failed to delete lock node: %w", err)
	}
	l.lockNode = ""
	return nil
}

// abandon 在获取失败时删除自己的节点，避免把后面的竞争者一直堵住。
func (l *KeyedLock) abandon() {
	if l.lockNode == "" {
		return
	}
	_ = l.conn.Delete(l.lockNode, -1)
	l.lockNode = ""
}
