package middleware

import (
	"context"
	"time"

	"github.com/Abhi39054/goessential/pkg/logger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// UnaryServerLogging 为 Unary RPC 提供日志中间件
// 请求到达记入 stdin（摄入）日志，失败记入 error 日志，完成记入 stdout 日志
func UnaryServerLogging(l *logger.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()

		ingressArgs := []any{"method", info.FullMethod}
		if requestID := extractRequestID(ctx); requestID != "" {
			ingressArgs = append(ingressArgs, "request_id", requestID)
		}
		l.Ingress("grpc request received", ingressArgs...)

		// 将 logger 注入 context
		ctx = logger.WithContext(ctx, l)

		resp, err := handler(ctx, req)

		duration := time.Since(start)

		if err != nil {
			st := status.Convert(err)
			l.Error("grpc request failed",
				"method", info.FullMethod,
				"duration", duration.String(),
				"code", st.Code().String(),
				"error", st.Message(),
			)
		} else {
			l.Info("grpc request completed",
				"method", info.FullMethod,
				"duration", duration.String(),
			)
		}

		return resp, err
	}
}

// StreamServerLogging 为 Stream RPC 提供日志中间件
func StreamServerLogging(l *logger.Logger) grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		start := time.Now()
		ctx := ss.Context()

		ingressArgs := []any{
			"method", info.FullMethod,
			"is_client_stream", info.IsClientStream,
			"is_server_stream", info.IsServerStream,
		}
		if requestID := extractRequestID(ctx); requestID != "" {
			ingressArgs = append(ingressArgs, "request_id", requestID)
		}
		l.Ingress("grpc stream started", ingressArgs...)

		// 包装 ServerStream 以注入 logger
		wrappedStream := &loggingServerStream{
			ServerStream: ss,
			ctx:          logger.WithContext(ctx, l),
		}

		err := handler(srv, wrappedStream)

		duration := time.Since(start)

		if err != nil {
			st := status.Convert(err)
			l.Error("grpc stream failed",
				"method", info.FullMethod,
				"duration", duration.String(),
				"code", st.Code().String(),
				"error", st.Message(),
			)
		} else {
			l.Info("grpc stream completed",
				"method", info.FullMethod,
				"duration", duration.String(),
			)
		}

		return err
	}
}

// extractRequestID 从 gRPC metadata 中提取 request_id
func extractRequestID(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get("x-request-id"); len(values) > 0 {
			return values[0]
		}
	}
	return ""
}

type loggingServerStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *loggingServerStream) Context() context.Context {
	return s.ctx
}
