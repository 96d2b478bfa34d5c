package api

import (
	"encoding/json"
	"net/http"

	"bacgate/internal/object"

	"github.com/gin-gonic/gin"
)

// ObjectSummary 对象列表中的一项
type ObjectSummary struct {
	Key        string `json:"key"`
	Type       string `json:"type"`
	Instance   uint32 `json:"instance"`
	ObjectName string `json:"object_name"`
}

// ObjectHandler 对象库只读查询接口, 每次请求只持有一次锁
type ObjectHandler struct {
	store   *object.Store
	version string
}

func NewObjectHandler(store *object.Store, version string) *ObjectHandler {
	return &ObjectHandler{store: store, version: version}
}

func errorResponse(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"error": message})
}

// GetDevice 返回设备实例与软件版本
func (h *ObjectHandler) GetDevice(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"instance": h.store.DeviceInstance(),
		"version":  h.version,
		"objects":  h.store.Len(),
	})
}

// ListObjects 返回按类型、实例排序的对象列表
func (h *ObjectHandler) ListObjects(c *gin.Context) {
	keys := h.store.Keys()
	out := make([]ObjectSummary, 0, len(keys))
	for _, key := range keys {
		summary := ObjectSummary{Key: key.String(), Type: key.Type.String(), Instance: key.Instance}
		if h.store.Get(key, func(r object.Record) { summary.ObjectName = r.Name() }) {
			out = append(out, summary)
		}
	}
	c.JSON(http.StatusOK, out)
}

// GetObject 返回单个对象, ?format=yaml 时以 YAML 输出
func (h *ObjectHandler) GetObject(c *gin.Context) {
	key, err := object.ParseKey(c.Param("key"))
	if err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if c.Query("format") == "yaml" {
		out, err := h.store.Marshal(key)
		if err != nil {
			errorResponse(c, http.StatusNotFound, "对象未找到")
			return
		}
		c.Data(http.StatusOK, "application/yaml; charset=utf-8", out)
		return
	}

	var out []byte
	found := h.store.Get(key, func(r object.Record) { out, err = json.Marshal(r) })
	if !found {
		errorResponse(c, http.StatusNotFound, "对象未找到")
		return
	}
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "序列化对象失败: "+err.Error())
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", out)
}

// GetSnapshot 以 YAML 返回整个对象库
func (h *ObjectHandler) GetSnapshot(c *gin.Context) {
	out, err := h.store.Snapshot()
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "序列化对象库失败: "+err.Error())
		return
	}
	c.Data(http.StatusOK, "application/yaml; charset=utf-8", out)
}
