package response

type Resp struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data any    `json:"data"`
}

// New 构造函数（保证 data 不为 null）
func New(code int, msg string, data any) Resp {
	if data == nil {
		data = struct{}{}
	}
	return Resp{Code: code, Msg: msg, Data: data}
}

func OK(data any) Resp {
	return New(CodeOK, CodeMsgMap[CodeOK], data)
}

// Error 失败响应（customMsg 为空时用默认 msg）
func Error(code int, customMsg string) Resp {
	return ErrorWithData(code, customMsg, nil)
}

// ErrorWithData 失败响应附带明细，例如字段校验错误
func ErrorWithData(code int, customMsg string, data any) Resp {
	msg := CodeMsgMap[code]
	if customMsg != "" {
		msg = customMsg
	}
	return New(code, msg, data)
}
