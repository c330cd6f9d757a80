// Package filestore 提供本地文件存储：作业附件、课程资料、头像。
// 上层只持有相对存储键（path key）；读写均经过本包，禁止路径穿越。
package filestore

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Danosky8082/EdTech/config"
)

// Store 本地文件存储
type Store struct {
	root    string
	maxSize int64 // 单文件大小上限（字节）
}

// NewStore 创建文件存储，确保根目录存在
func NewStore(cfg *config.UploadConfig) (*Store, error) {
	root, err := filepath.Abs(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("解析存储根目录失败: %w", err)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("创建存储根目录失败: %w", err)
	}
	return &Store{
		root:    root,
		maxSize: int64(cfg.MaxSizeMB) * 1024 * 1024,
	}, nil
}

// Save 保存上传文件到指定子目录，返回存储键
// 文件名使用 UUID + 原始扩展名，避免重名与注入
func (s *Store) Save(category string, fh *multipart.FileHeader) (string, error) {
	if s.maxSize > 0 && fh.Size > s.maxSize {
		return "", fmt.Errorf("文件大小 %d 超过上限 %d", fh.Size, s.maxSize)
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	key := filepath.Join(category, time.Now().Format("2006/01"),
		uuid.New().String()+ext)

	dst := filepath.Join(s.root, key)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("创建存储目录失败: %w", err)
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("打开上传文件失败: %w", err)
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("创建目标文件失败: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("写入文件失败: %w", err)
	}

	return filepath.ToSlash(key), nil
}

// Open 打开存储键对应的文件供流式下载
// 调用方负责 Close；客户端断开时由 HTTP 层中止拷贝并释放句柄
func (s *Store) Open(key string) (*os.File, error) {
	p, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	return os.Open(p)
}

// Path 将存储键解析为磁盘绝对路径，供 HTTP 层直接发送文件
func (s *Store) Path(key string) (string, error) {
	p, err := s.resolve(key)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(p); err != nil {
		return "", fmt.Errorf("文件不存在: %w", err)
	}
	return p, nil
}

// Exists 检查存储键对应的文件是否存在
func (s *Store) Exists(key string) bool {
	p, err := s.resolve(key)
	if err != nil {
		return false
	}
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}

// Remove 删除存储键对应的文件；文件不存在不视为错误
func (s *Store) Remove(key string) error {
	p, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// resolve 将存储键解析为根目录下的绝对路径，拒绝穿越
func (s *Store) resolve(key string) (string, error) {
	p := filepath.Join(s.root, filepath.FromSlash(key))
	if !strings.HasPrefix(p, s.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("非法存储键: %q", key)
	}
	return p, nil
}
