package snowflake

const (
	// Epoch 起始时间戳 (2010-11-04 01:42:54.657 UTC，Twitter Snowflake纪元)
	// 注意：属于ID格式契约的一部分，所有协作的生成器实例必须一致
	Epoch int64 = 1288834974657

	// 位数分配
	WorkerIDBits     = 5  // 工作机器ID位数
	DatacenterIDBits = 5  // 数据中心ID位数
	SequenceBits     = 12 // 序列号位数
	TimestampBits    = 41 // 时间戳位数

	// 最大值计算(切记不是个数)
	MaxWorkerID     = -1 ^ (-1 << WorkerIDBits)     // 31 (2^5 - 1) [0, 31]
	MaxDatacenterID = -1 ^ (-1 << DatacenterIDBits) // 31 (2^5 - 1) [0, 31]
	MaxSequence     = -1 ^ (-1 << SequenceBits)     // 4095 (2^12 - 1) [0, 4095]

	// 位移量
	WorkerIDShift     = SequenceBits                                   // 12
	DatacenterIDShift = SequenceBits + WorkerIDBits                    // 17
	TimestampShift    = SequenceBits + WorkerIDBits + DatacenterIDBits // 22

	// 最大时间戳差值 (41位)
	maxTimestampDiff int64 = 1<<TimestampBits - 1

	// 批量生成最大数量（支持跨毫秒生成）
	maxBatchSize = 100_000

	// 允许的未来时间容差（毫秒）
	maxFutureTimeTolerance = 60 * 1000 // 1分钟
)
