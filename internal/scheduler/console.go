package scheduler

import (
	"bufio"
	"io"
	"strings"
)

// StartConsole 在独立 goroutine 中逐行读取 r, 这是程序中唯一的阻塞读取
// 单行长度不受限制; r 读到 EOF 或出错时关闭返回的通道
func StartConsole(r io.Reader) <-chan string {
	lines := make(chan string, 1)
	go func() {
		defer close(lines)
		reader := bufio.NewReader(r)
		for {
			line, err := reader.ReadString('\n')
			if line != "" {
				lines <- strings.TrimSpace(line)
			}
			if err != nil {
				return
			}
		}
	}()
	return lines
}

// IsQuit 判断输入是否为退出命令 q / Q
func IsQuit(line string) bool {
	return strings.EqualFold(strings.TrimSpace(line), "q")
}
