package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			-- Graph documents; trigger columns are denormalised for matching
			CREATE TABLE graphs (
				id VARCHAR(255) PRIMARY KEY,
				owner VARCHAR(255) NOT NULL,
				name VARCHAR(255) NOT NULL,
				status VARCHAR(50) NOT NULL CHECK (status IN ('draft', 'active', 'disabled')),
				version BIGINT NOT NULL,
				trigger_type VARCHAR(50),
				trigger_model VARCHAR(255),
				webhook_path VARCHAR(1024),
				document JSONB NOT NULL,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_graphs_owner_status ON graphs(owner, status);
			CREATE INDEX idx_graphs_owner_trigger_model ON graphs(owner, trigger_model) WHERE status = 'active';

			CREATE TABLE executions (
				id VARCHAR(255) PRIMARY KEY,
				graph_id VARCHAR(255) NOT NULL,
				graph_version BIGINT NOT NULL,
				owner VARCHAR(255) NOT NULL,
				trigger_event_id VARCHAR(255) NOT NULL,
				status VARCHAR(50) NOT NULL,
				node_results JSONB NOT NULL DEFAULT '[]',
				started_at TIMESTAMP WITH TIME ZONE NOT NULL,
				finished_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_executions_graph_id ON executions(graph_id, started_at DESC);
			CREATE INDEX idx_executions_finished_at ON executions(finished_at);
		`,
		2: `
			CREATE TABLE activities (
				id VARCHAR(255) PRIMARY KEY,
				owner VARCHAR(255) NOT NULL,
				entity_id VARCHAR(255) NOT NULL,
				message TEXT NOT NULL,
				graph_id VARCHAR(255) NOT NULL,
				execution_id VARCHAR(255) NOT NULL,
				node_id VARCHAR(255) NOT NULL,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_activities_entity ON activities(owner, entity_id, created_at);
		`,
	}
}
